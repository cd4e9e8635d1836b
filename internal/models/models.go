package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the supported document formats. Unrecognized
// extensions are rejected at the boundary before extraction starts.
type Format int

const (
	FormatPdf Format = iota
	FormatDocx
	FormatTxt
	FormatSlides
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat maps a filename extension onto a Format.
func ParseFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPdf, nil
	case ".docx":
		return FormatDocx, nil
	case ".txt":
		return FormatTxt, nil
	case ".ppt", ".pptx":
		return FormatSlides, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func (f Format) String() string {
	switch f {
	case FormatPdf:
		return "pdf"
	case FormatDocx:
		return "docx"
	case FormatTxt:
		return "txt"
	case FormatSlides:
		return "slides"
	default:
		return "unknown"
	}
}

// SegmentKind is the human-readable label used in segment headers.
type SegmentKind string

const (
	KindPage  SegmentKind = "Page"
	KindSlide SegmentKind = "Slide"
)

// Segment is one page or slide of a document: its native text plus the
// rendered image markers collected while walking that segment, in
// encounter order.
type Segment struct {
	Index    int
	Text     string
	Captions []string
}

// ExtractedText is the ordered result of extracting a whole document.
type ExtractedText struct {
	Kind     SegmentKind
	Segments []Segment
}

// Render produces the linear text stream handed to the chunker. Each
// segment is prefixed with its index header so chunk boundaries stay
// traceable to a source location, and image markers follow the
// segment's native text.
func (e ExtractedText) Render() string {
	var b strings.Builder
	for _, seg := range e.Segments {
		fmt.Fprintf(&b, "%s %d:\n%s\n", e.Kind, seg.Index, seg.Text)
		for _, c := range seg.Captions {
			b.WriteString(c)
		}
	}
	return b.String()
}

// Metadata is stored alongside every vector in the index.
type Metadata struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// VectorRecord is one embedded chunk ready for upsert. IDs are unique
// within a single ingestion batch.
type VectorRecord struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a similarity-search hit, most-similar first.
type Match struct {
	ID     string
	Text   string
	Source string
	Score  float32
}
