package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"docubot/internal/models"
)

// ErrInvalidUTF8 rejects plain-text input that cannot be decoded.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8 text")

func extractText(data []byte) (models.ExtractedText, error) {
	if !utf8.Valid(data) {
		return models.ExtractedText{}, fmt.Errorf("decoding text file: %w", ErrInvalidUTF8)
	}
	return models.ExtractedText{
		Kind:     models.KindPage,
		Segments: []models.Segment{{Index: 1, Text: string(data)}},
	}, nil
}
