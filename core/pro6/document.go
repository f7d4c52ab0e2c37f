// Package pro6 assembles and serializes ProPresenter 6 presentation
// documents from formatted lyric slides.
package pro6

import (
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
	"github.com/karllinder/ewexport/core/sections"
)

// Slide dimensions and text defaults for generated documents.
const (
	slideWidth  = 1920
	slideHeight = 1080

	defaultFontName = "Arial"
	defaultFontSize = 60
)

// SongMeta carries the song metadata fields from the record source.
// Empty fields are omitted from the output entirely.
type SongMeta struct {
	ID              int64
	Title           string
	Author          string
	Copyright       string
	Administrator   string
	ReferenceNumber string
}

// Options controls document assembly.
type Options struct {
	// FirstSlide prepends a synthetic slide group before the lyrics.
	FirstSlide      bool
	FirstSlideText  string
	FirstSlideGroup string // defaults to "Intro"

	// LastSlide appends a synthetic slide group after the lyrics.
	LastSlide      bool
	LastSlideGroup string // defaults to "Blank"

	// FontFamily and FontSize override the built-in text defaults.
	// FontSize is in points; the document encodes half-point units.
	FontFamily string
	FontSize   int
}

func (o Options) fontName() string {
	if o.FontFamily != "" {
		return o.FontFamily
	}
	return defaultFontName
}

func (o Options) fontSize() int {
	if o.FontSize > 0 {
		return o.FontSize
	}
	return defaultFontSize
}

// Document is the root RVPresentationDocument element.
type Document struct {
	XMLName xml.Name `xml:"RVPresentationDocument"`

	Height                 int    `xml:"height,attr"`
	Width                  int    `xml:"width,attr"`
	VersionNumber          string `xml:"versionNumber,attr"`
	DocType                string `xml:"docType,attr"`
	CreatorCode            string `xml:"creatorCode,attr"`
	LastDateUsed           string `xml:"lastDateUsed,attr"`
	UsedCount              string `xml:"usedCount,attr"`
	Category               string `xml:"category,attr"`
	ResourcesDirectory     string `xml:"resourcesDirectory,attr"`
	BackgroundColor        string `xml:"backgroundColor,attr"`
	DrawingBackgroundColor string `xml:"drawingBackgroundColor,attr"`

	Artist          string `xml:"artist,attr,omitempty"`
	Author          string `xml:"author,attr,omitempty"`
	CCLIDisplay     string `xml:"CCLIDisplay,attr"`
	CCLIPublisher   string `xml:"CCLIPublisher,attr,omitempty"`
	CCLICopyright   string `xml:"CCLICopyright,attr,omitempty"`
	CCLISongTitle   string `xml:"CCLISongTitle,attr,omitempty"`
	CCLIAuthor      string `xml:"CCLIAuthor,attr,omitempty"`
	CCLISongNumber  string `xml:"CCLISongNumber,attr,omitempty"`
	CCLIArtistCred  string `xml:"CCLIArtistCredits,attr,omitempty"`
	CCLILicenseNum  string `xml:"CCLILicenseNumber,attr,omitempty"`

	Timeline     Timeline     `xml:"timeline"`
	Groups       GroupList    `xml:"groups"`
	Arrangements Arrangements `xml:"arrangements"`
}

// Timeline is required by the target format but carries no content here.
type Timeline struct {
	TimeOffset              string   `xml:"timeOffSet,attr"`
	SelectedMediaTrackIndex string   `xml:"selectedMediaTrackIndex,attr"`
	UnitOfMeasure           string   `xml:"unitOfMeasure,attr"`
	Duration                string   `xml:"duration,attr"`
	Loop                    string   `xml:"loop,attr"`
	TimeCues                struct{} `xml:"timeCues"`
}

// GroupList wraps the ordered slide groups.
type GroupList struct {
	Groups []SlideGroup `xml:"RVSlideGrouping"`
}

// SlideGroup is one named, colored slide container (one per section).
type SlideGroup struct {
	Name         string  `xml:"name,attr"`
	UUID         string  `xml:"uuid,attr"`
	Color        string  `xml:"color,attr"`
	SerialNumber int     `xml:"serialNumber,attr"`
	Slides       []Slide `xml:"RVDisplaySlide"`
}

// Slide is one projectable slide element.
type Slide struct {
	BackgroundColor        string   `xml:"backgroundColor,attr"`
	Enabled                string   `xml:"enabled,attr"`
	HighlightColor         string   `xml:"highlightColor,attr"`
	HotKey                 string   `xml:"hotKey,attr"`
	Label                  string   `xml:"label,attr"`
	Notes                  string   `xml:"notes,attr"`
	SlideType              string   `xml:"slideType,attr"`
	SortIndex              int      `xml:"sort_index,attr"`
	UUID                   string   `xml:"UUID,attr"`
	DrawingBackgroundColor string   `xml:"drawingBackgroundColor,attr"`
	ChordChartPath         string   `xml:"chordChartPath,attr"`
	SerialNumber           int      `xml:"serialNumber,attr"`
	Cues                   struct{} `xml:"cues"`
	DisplayElements        Elements `xml:"displayElements"`
}

// Elements wraps a slide's display elements.
type Elements struct {
	Text []TextElement `xml:"RVTextElement"`
}

// TextElement holds a slide's text both as a base64 RTF styling blob
// (RTFData) and as plain text lines for lossless round-tripping.
type TextElement struct {
	DisplayDelay       string `xml:"displayDelay,attr"`
	DisplayName        string `xml:"displayName,attr"`
	Locked             string `xml:"locked,attr"`
	Persistent         string `xml:"persistent,attr"`
	TypeID             string `xml:"typeID,attr"`
	FromTemplate       string `xml:"fromTemplate,attr"`
	BezelRadius        string `xml:"bezelRadius,attr"`
	DrawingFill        string `xml:"drawingFill,attr"`
	DrawingShadow      string `xml:"drawingShadow,attr"`
	DrawingStroke      string `xml:"drawingStroke,attr"`
	FillColor          string `xml:"fillColor,attr"`
	Rotation           string `xml:"rotation,attr"`
	Source             string `xml:"source,attr"`
	AdjustsHeightToFit string `xml:"adjustsHeightToFit,attr"`
	VerticalAlignment  string `xml:"verticalAlignment,attr"`
	Opacity            string `xml:"opacity,attr"`
	UUID               string `xml:"UUID,attr"`
	RTFData            string `xml:"RTFData,attr"`

	Position Position   `xml:"position"`
	Size     Size       `xml:"size"`
	Shadow   Shadow     `xml:"shadow"`
	Strings  []NSString `xml:"NSString"`
}

// NSString is one plain text line of a slide.
type NSString struct {
	Value string `xml:",chardata"`
}

// Position locates a text element on the slide.
type Position struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
	Z int `xml:"z,attr"`
}

// Size bounds a text element.
type Size struct {
	Width  int `xml:"width,attr"`
	Height int `xml:"height,attr"`
}

// Shadow carries the fixed text shadow settings.
type Shadow struct {
	ShadowColor      string `xml:"shadowColor,attr"`
	ShadowOffset     string `xml:"shadowOffset,attr"`
	ShadowBlurRadius string `xml:"shadowBlurRadius,attr"`
}

// Arrangements wraps the arrangement list.
type Arrangements struct {
	Arrangements []Arrangement `xml:"RVSlideArrangement"`
}

// Arrangement orders slide groups for playback; group IDs reference the
// UUIDs of the document's slide groups.
type Arrangement struct {
	Name     string   `xml:"name,attr"`
	UUID     string   `xml:"uuid,attr"`
	Color    string   `xml:"color,attr"`
	GroupIDs []string `xml:"groupIDs>NSString"`
}

// groupColors is the fixed lookup from canonical label kind to display
// color (RGBA components in 0-1).
var groupColors = map[sections.Kind]string{
	sections.KindVerse:     "0 0 1 1",
	sections.KindChorus:    "1 0 0 1",
	sections.KindBridge:    "0 0.5 0 1",
	sections.KindPreChorus: "1 0.5 0 1",
	sections.KindIntro:     "0 1 1 1",
	sections.KindOutro:     "1 0 1 1",
	sections.KindTag:       "0.5 0 0.5 1",
	sections.KindInterlude: "0.5 0.5 0 1",
	sections.KindEnding:    "0.25 0.25 0.25 1",
}

// defaultGroupColor is used for unlabeled and custom groups.
const defaultGroupColor = "0 0 0 0"

// colorFor returns the display color for a label.
func colorFor(label sections.Label) string {
	if c, ok := groupColors[label.Kind]; ok {
		return c
	}
	return defaultGroupColor
}

// newUUID generates an uppercase identifier for a document element.
// Identifiers are unique within a document and freshly generated every
// assembly; two runs over the same song produce different identifiers.
func newUUID() string {
	return strings.ToUpper(uuid.New().String())
}
