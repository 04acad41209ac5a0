package transcribe

import "errors"

// DefaultModel is the recognition model used when no selection was made
// or the request carries an empty model field.
const DefaultModel = "whisper-large-v3-turbo"

// Request is one outbound transcription attempt. It is owned by the
// pipeline for the duration of a single call and not retained afterwards.
type Request struct {
	// Audio is the finalized binary clip.
	Audio []byte
	// MIMEType declares the clip's content type, e.g. "audio/wav".
	MIMEType string
	// Extension is the clip's file extension including the leading dot.
	Extension string

	Model      string
	Prompt     string
	Credential string
}

// Response is the wire shape relayed from the provider. Exactly one of
// Text or Error is meaningful.
type Response struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// ErrNoCredential is returned before any network activity when the
// request carries no credential.
var ErrNoCredential = errors.New("no API key configured")

// ErrTransport is returned for a non-success transport status; the body
// is not consulted.
var ErrTransport = errors.New("failed to get transcription")

// ProviderError carries a structured error message relayed verbatim
// from the remote provider.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}
