// Package xml provides pure Go XML well-formedness checks and XPath
// queries over serialized presentation documents.
//
// Security note: XXE attacks are mitigated by Go's xml.Decoder, which does
// not fetch external entities; entity expansion is disabled explicitly in
// Validate as well.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// ValidationResult contains the result of a well-formedness check.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks XML data for well-formedness. Entity expansion is
// disabled so hostile input cannot trigger XXE or billion-laughs blowup.
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			break
		}
	}

	return result
}

// Query returns all nodes matching the XPath expression.
func (d *Document) Query(expr string) ([]*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return xmlquery.QueryAll(d.root, expr)
}

// QueryOne returns the first node matching the XPath expression, or nil.
func (d *Document) QueryOne(expr string) (*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return xmlquery.Query(d.root, expr)
}

// Count returns the number of nodes matching the XPath expression.
func (d *Document) Count(expr string) (int, error) {
	nodes, err := d.Query(expr)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// InnerText returns the concatenated text content of the first node
// matching the expression, or "" when nothing matches.
func (d *Document) InnerText(expr string) (string, error) {
	node, err := d.QueryOne(expr)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", nil
	}
	return node.InnerText(), nil
}

// Attr returns the value of an attribute on the first node matching the
// expression. The second return is false when the node or attribute is
// missing.
func (d *Document) Attr(expr, name string) (string, bool, error) {
	node, err := d.QueryOne(expr)
	if err != nil {
		return "", false, err
	}
	if node == nil {
		return "", false, nil
	}
	for _, a := range node.Attr {
		if a.Name.Local == name {
			return a.Value, true, nil
		}
	}
	return "", false, nil
}
