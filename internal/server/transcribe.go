package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/audio"
	"github.com/voxtake/voxtake/internal/observability"
	"github.com/voxtake/voxtake/internal/transcribe"
)

const internalErrorMessage = "Failed to transcribe audio"

// extensionPattern accepts a plain dotted extension and nothing else, so
// a client-supplied value can never escape the upload directory.
var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// TranscribeHandler is the server half of the transcription pipeline. It
// receives one clip as a multipart form, stages it on disk under a name
// carrying the declared extension, and relays it to the remote provider.
// The staged file is removed on every exit path.
type TranscribeHandler struct {
	provider  transcribe.Provider
	uploadDir string
	maxBytes  int64
	logger    zerolog.Logger
}

// NewTranscribeHandler creates the handler. An empty uploadDir means the
// system temp directory.
func NewTranscribeHandler(provider transcribe.Provider, uploadDir string, maxBytes int64, logger zerolog.Logger) *TranscribeHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &TranscribeHandler{
		provider:  provider,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

func (h *TranscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.logger.Warn().Err(err).Msg("Rejected transcription upload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
		return
	}
	defer file.Close()

	apiKey := strings.TrimSpace(r.FormValue("apiKey"))
	if apiKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "API key is required"})
		return
	}
	model := r.FormValue("model")
	prompt := r.FormValue("prompt")
	extension := sanitizeExtension(r.FormValue("fileExtension"))

	stagedPath, err := h.stageClip(file, extension)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to stage uploaded clip")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
		return
	}
	defer h.removeStaged(stagedPath)

	start := time.Now()
	text, err := h.provider.Transcribe(r.Context(), stagedPath, model, prompt, apiKey)
	if err != nil {
		var provErr *transcribe.ProviderError
		if errors.As(err, &provErr) {
			// Relayed with the provider's own message so the client can
			// surface it verbatim.
			writeJSON(w, http.StatusOK, map[string]string{"error": provErr.Message})
			return
		}
		h.logger.Error().Err(err).Msg("Provider call failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
		return
	}

	h.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Clip transcribed")
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// stageClip writes the upload to a uuid-derived path, then renames it to
// carry the declared extension. The provider selects its decoder from
// the extension, so the rename is load-bearing, not cosmetic.
func (h *TranscribeHandler) stageClip(src io.Reader, extension string) (string, error) {
	base := filepath.Join(h.uploadDir, "voxtake-"+uuid.New().String())

	out, err := os.Create(base)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		h.removeStaged(base)
		return "", err
	}
	if err := out.Close(); err != nil {
		h.removeStaged(base)
		return "", err
	}

	named := base + extension
	if err := os.Rename(base, named); err != nil {
		h.removeStaged(base)
		return "", err
	}
	return named, nil
}

// removeStaged deletes a staged file. Cleanup failures are logged and
// counted, never surfaced to the client.
func (h *TranscribeHandler) removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		observability.RecordCleanupFailure()
		h.logger.Error().Err(err).Str("path", path).Msg("Failed to remove staged clip")
	}
}

func sanitizeExtension(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.HasPrefix(raw, ".") {
		raw = "." + raw
	}
	if extensionPattern.MatchString(raw) {
		return raw
	}
	return audio.ClipExtension
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
