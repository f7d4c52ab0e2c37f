// Package errors provides standardized error types and helpers for the ewexport codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conversion pipeline
var (
	// ErrDecode indicates structurally unparsable source markup
	ErrDecode = errors.New("undecodable markup")
	// ErrEmptyContent indicates a song with no lyric text (warning-grade, not a failure)
	ErrEmptyContent = errors.New("empty content")
	// ErrInvalidName indicates a title that sanitized down to nothing usable
	ErrInvalidName = errors.New("invalid filename")
	// ErrWrite indicates an output file could not be written
	ErrWrite = errors.New("write failed")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// DecodeError represents a structurally unparsable lyric blob.
// Malformed escapes inside an otherwise balanced document never produce
// a DecodeError; only unbalanced groups or a missing header do.
type DecodeError struct {
	Pos     int    // Byte offset where parsing failed
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *DecodeError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("decode failed at offset %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("decode failed: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDecode
}

// EmptyContentError marks a song whose lyric blob contained no text.
// Reported as success with a warning flag, never as a failure.
type EmptyContentError struct {
	SongID int64 // Row ID of the song in the source database
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("song %d has no lyric content", e.SongID)
}

func (e *EmptyContentError) Unwrap() error {
	return ErrEmptyContent
}

// NameError represents a title that could not be sanitized into a usable filename.
type NameError struct {
	Title   string // Original song title
	Message string // Human-readable error message
}

func (e *NameError) Error() string {
	return fmt.Sprintf("cannot derive filename from %q: %s", e.Title, e.Message)
}

func (e *NameError) Unwrap() error {
	return ErrInvalidName
}

// WriteError represents a failed output write, surfaced unchanged from the
// file system writer and isolated to its own song.
type WriteError struct {
	Path string // Destination path
	Err  error  // Underlying error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrWrite
}

// NotFoundError represents a missing resource with context.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "song", "database", "mapping")
	ID       string // Identifier of the resource
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewDecode creates a DecodeError.
func NewDecode(pos int, message string) *DecodeError {
	return &DecodeError{Pos: pos, Message: message}
}

// NewEmptyContent creates an EmptyContentError.
func NewEmptyContent(songID int64) *EmptyContentError {
	return &EmptyContentError{SongID: songID}
}

// NewName creates a NameError.
func NewName(title, message string) *NameError {
	return &NameError{Title: title, Message: message}
}

// NewWrite creates a WriteError wrapping err.
func NewWrite(path string, err error) *WriteError {
	return &WriteError{Path: path, Err: err}
}

// NewNotFound creates a NotFoundError.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both error packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
