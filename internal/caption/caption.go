// Package caption describes images through a multimodal chat model.
package caption

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"docubot/internal/llmservice"
	"docubot/internal/models"
)

// Captioner turns raw image bytes into a short natural-language
// description.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Error marks a captioning failure. The extractor converts it into a
// visible marker instead of aborting the document.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "caption: " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// LLMCaptioner sends the image to a multimodal endpoint as a base64
// data URL with a fixed instruction.
type LLMCaptioner struct {
	client *llmservice.Client
}

func NewLLMCaptioner(client *llmservice.Client) *LLMCaptioner {
	return &LLMCaptioner{client: client}
}

func (c *LLMCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(models.CaptionInstruction),
				llms.ImageURLPart(dataURL),
			},
		},
	}
	text, err := c.client.GenerateText(ctx, messages)
	if err != nil {
		return "", &Error{Err: err}
	}
	return strings.TrimSpace(text), nil
}
