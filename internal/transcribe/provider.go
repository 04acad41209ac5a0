package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Provider submits a clip on disk to the remote speech-to-text service.
// The audio path must carry a recognizable extension; the provider's
// client selects the decoder from it.
type Provider interface {
	Transcribe(ctx context.Context, audioPath, model, prompt, apiKey string) (string, error)
}

// OpenAIProvider talks to any OpenAI-compatible audio transcription API
// (Groq by default). The credential is caller-supplied per request and
// never stored.
type OpenAIProvider struct {
	baseURL string
	logger  zerolog.Logger
}

// NewOpenAIProvider creates a provider client against baseURL.
func NewOpenAIProvider(baseURL string, logger zerolog.Logger) *OpenAIProvider {
	return &OpenAIProvider{baseURL: baseURL, logger: logger}
}

// Transcribe streams the file at audioPath to the provider. A blank
// model falls back to the default; the prompt is forwarded only when
// non-blank. Provider-originated errors are returned as *ProviderError
// so callers can relay the message verbatim.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath, model, prompt, apiKey string) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = p.baseURL
	client := openai.NewClientWithConfig(cfg)

	if model == "" {
		model = DefaultModel
	}

	req := openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
	}
	if trimmed := strings.TrimSpace(prompt); trimmed != "" {
		req.Prompt = trimmed
	}

	p.logger.Debug().Str("model", model).Str("file", audioPath).Msg("Submitting clip to provider")

	resp, err := client.CreateTranscription(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			p.logger.Warn().Int("status", apiErr.HTTPStatusCode).Str("message", apiErr.Message).Msg("Provider rejected transcription")
			return "", &ProviderError{Message: apiErr.Message}
		}
		return "", fmt.Errorf("provider call failed: %w", err)
	}

	return resp.Text, nil
}
