package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/wangcai/internal/domain/fortune"
	"github.com/okian/wangcai/internal/domain/profile"
)

// Default model names.
const (
	DefaultTextModel   = "gemini-3-pro-preview"
	DefaultImageModel  = "gemini-2.5-flash-image"
	squareAspectRatio  = "1:1"
	imageModality      = "IMAGE"
	jsonResponseFormat = "application/json"
)

// FortuneClient produces readings with a schema-constrained text model.
type FortuneClient struct {
	client *Client
	model  string
}

// NewFortuneClient binds client to a text model.
func NewFortuneClient(client *Client, model string) *FortuneClient {
	if model == "" {
		model = DefaultTextModel
	}
	return &FortuneClient{client: client, model: model}
}

// Generate asks for a reading of p. Identical profiles always make a fresh
// call; nothing is cached.
func (f *FortuneClient) Generate(ctx context.Context, p profile.UserProfile) (fortune.Result, error) {
	resp, err := f.client.GenerateContent(ctx, f.model, GenerateRequest{
		Contents: userText(fortune.BuildFortunePrompt(p)),
		GenerationConfig: &GenerationConfig{
			ResponseMIMEType: jsonResponseFormat,
			ResponseSchema:   fortune.ResponseSchema(),
		},
	})
	if err != nil {
		return fortune.Result{}, fortune.NewGenerationError(fortune.KindText, err)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return fortune.Result{}, fortune.NewGenerationError(fortune.KindText,
			fmt.Errorf("%w: no text parts (finish reason %q)", fortune.ErrMalformedResponse, resp.Candidates[0].FinishReason))
	}
	return fortune.Parse(text.String())
}

// TalismanClient produces square talisman images.
type TalismanClient struct {
	client *Client
	model  string
}

// NewTalismanClient binds client to an image model.
func NewTalismanClient(client *Client, model string) *TalismanClient {
	if model == "" {
		model = DefaultImageModel
	}
	return &TalismanClient{client: client, model: model}
}

// GenerateImage renders the talisman for prompt and returns the first inline
// image as a data URI.
func (t *TalismanClient) GenerateImage(ctx context.Context, prompt string) (fortune.ImageReference, error) {
	resp, err := t.client.GenerateContent(ctx, t.model, GenerateRequest{
		Contents: userText(fortune.BuildTalismanPrompt(prompt)),
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{imageModality},
			ImageConfig:        &ImageConfig{AspectRatio: squareAspectRatio},
		},
	})
	if err != nil {
		return "", fortune.NewGenerationError(fortune.KindImage, err)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			ref := fortune.NewImageReference(part.InlineData.MIMEType, part.InlineData.Data)
			if _, err := ref.Bytes(); err != nil {
				return "", fortune.NewGenerationError(fortune.KindImage, fmt.Errorf("inline image: %w", err))
			}
			return ref, nil
		}
	}
	return "", fortune.NewGenerationError(fortune.KindImage, fortune.ErrNoTalisman)
}
