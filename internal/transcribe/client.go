package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client is the client half of the transcription pipeline: it packages
// a finalized clip into a multipart form and posts it to the transcribe
// endpoint. Failures are terminal; nothing here retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a pipeline client posting to endpoint.
func NewClient(endpoint string, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			// Long clips take a while to transcribe; generous but bounded.
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// Transcribe submits one clip and returns the trimmed recognized text.
// It fails fast with ErrNoCredential before any network activity when
// the request carries no credential.
func (c *Client) Transcribe(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Credential) == "" {
		return "", ErrNoCredential
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Transcription endpoint returned non-success status")
		return "", ErrTransport
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	if decoded.Error != "" {
		return "", &ProviderError{Message: decoded.Error}
	}

	text := strings.TrimSpace(decoded.Text)
	c.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Transcription received")
	return text, nil
}

// encodeForm builds the multipart body: the clip under "audio" with its
// declared filename and MIME type, the extension, credential and model,
// and the prompt only when non-blank after trimming.
func encodeForm(req Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="audio%s"`, req.Extension))
	header.Set("Content-Type", req.MIMEType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, "", err
	}

	if err := mw.WriteField("fileExtension", req.Extension); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("apiKey", req.Credential); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("model", req.Model); err != nil {
		return nil, "", err
	}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		if err := mw.WriteField("prompt", prompt); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
