package models

import "fmt"

const (
	CaptionInstruction = "Describe what is in the image"

	ChatSystemPrompt = "You are a helpful assistant. Use the provided context to answer the query."

	ChatPromptTemplate = "Context:\n%s\nQuery: %s"
)

// ImageMarker renders the caption block fused into a segment's text
// stream after the native text.
func ImageMarker(filename, description string) string {
	return fmt.Sprintf("\n[Image: %s]\nDescription: %s\n", filename, description)
}

// ImageFailureMarker renders the visible marker substituted when a
// single image cannot be extracted or captioned.
func ImageFailureMarker(kind SegmentKind, segment, image int, err error) string {
	return fmt.Sprintf("\n[Image Extraction Failed: %s %d, Image %d]\nError: %v\n", kind, segment, image, err)
}
