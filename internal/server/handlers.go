package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/app"
	"github.com/voxtake/voxtake/internal/capture"
	"github.com/voxtake/voxtake/internal/history"
	"github.com/voxtake/voxtake/internal/settings"
	"github.com/voxtake/voxtake/internal/transcribe"
)

// knownModels is the fixed recognition model catalog offered to the UI.
var knownModels = []string{
	"whisper-large-v3-turbo",
	"whisper-large-v3",
	"distil-whisper-large-v3-en",
}

// DeviceLister enumerates capture input devices.
type DeviceLister func() []capture.Device

// API serves the JSON control surface of the recorder UI.
type API struct {
	controller *app.Controller
	history    *history.Store
	settings   *settings.Store
	clipboard  app.Clipboard
	devices    DeviceLister
	logger     zerolog.Logger
}

// NewAPI creates the API handler set.
func NewAPI(
	controller *app.Controller,
	hist *history.Store,
	set *settings.Store,
	clip app.Clipboard,
	devices DeviceLister,
	logger zerolog.Logger,
) *API {
	return &API{
		controller: controller,
		history:    hist,
		settings:   set,
		clipboard:  clip,
		devices:    devices,
		logger:     logger,
	}
}

// Register attaches all API routes to the router.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/devices", a.handleListDevices).Methods(http.MethodGet)
	r.HandleFunc("/record/toggle", a.handleToggleRecording).Methods(http.MethodPost)
	r.HandleFunc("/record", a.handleRecordingState).Methods(http.MethodGet)

	r.HandleFunc("/history", a.handleListHistory).Methods(http.MethodGet)
	r.HandleFunc("/history", a.handleClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/history/{index:[0-9]+}", a.handleDeleteHistoryItem).Methods(http.MethodDelete)
	r.HandleFunc("/history/{index:[0-9]+}/copy", a.handleCopyHistoryItem).Methods(http.MethodPost)

	r.HandleFunc("/settings", a.handleGetSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings/credential", a.handleSetCredential).Methods(http.MethodPut)
	r.HandleFunc("/settings/model", a.handleSetModel).Methods(http.MethodPut)

	r.HandleFunc("/models", a.handleListModels).Methods(http.MethodGet)
}

func (a *API) handleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"devices": a.devices()})
}

func (a *API) handleToggleRecording(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID string `json:"deviceId"`
		Prompt   string `json:"prompt"`
	}
	if r.Body != nil {
		// An empty body means default device, no prompt.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if err := a.controller.Toggle(body.DeviceID, body.Prompt); err != nil {
		if errors.Is(err, capture.ErrSessionLive) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": a.controller.State().String()})
}

func (a *API) handleRecordingState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"state":  a.controller.State().String(),
		"result": a.controller.Result(),
	})
}

func (a *API) handleListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": a.history.List()})
}

func (a *API) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.history.Clear(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to clear history")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to clear history"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid history index"})
		return
	}
	// Out-of-range deletion is a no-op, not an error.
	if err := a.history.DeleteAt(index); err != nil {
		a.logger.Error().Err(err).Msg("Failed to delete history item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete history item"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCopyHistoryItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid history index"})
		return
	}

	items := a.history.List()
	if index < 0 || index >= len(items) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No such history item"})
		return
	}
	if err := a.clipboard.SetText(items[index]); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to copy history item to clipboard")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to copy to clipboard"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"hasCredential": a.settings.HasCredential(),
		"model":         a.settings.Model(),
	})
}

func (a *API) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := a.settings.SetCredential(body.Credential); err != nil {
		if errors.Is(err, settings.ErrBlankCredential) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		a.logger.Error().Err(err).Msg("Failed to save credential")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save credential"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := a.settings.SetModel(body.Model); err != nil {
		a.logger.Error().Err(err).Msg("Failed to save model selection")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save model selection"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  knownModels,
		"default": transcribe.DefaultModel,
	})
}
