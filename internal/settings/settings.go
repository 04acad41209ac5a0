// Package settings holds user-facing configuration: the provider
// credential and the selected recognition model.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/store"
	"github.com/voxtake/voxtake/internal/transcribe"
)

const (
	keyCredential = "credential"
	keyModel      = "selectedModel"
)

// ErrBlankCredential is returned when a blank credential is submitted.
var ErrBlankCredential = errors.New("credential must not be blank")

// Store caches the persisted settings for the life of the process.
// Values are loaded once at startup; writes update the cache and the
// key-value file in the same step.
type Store struct {
	kv     *store.KV
	logger zerolog.Logger

	mu         sync.RWMutex
	credential string
	model      string
}

// New loads the settings from the key-value store.
func New(kv *store.KV, logger zerolog.Logger) (*Store, error) {
	s := &Store{kv: kv, logger: logger}

	if _, err := kv.Get(keyCredential, &s.credential); err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if _, err := kv.Get(keyModel, &s.model); err != nil {
		return nil, fmt.Errorf("failed to load model selection: %w", err)
	}

	logger.Debug().
		Bool("has_credential", s.credential != "").
		Str("model", s.model).
		Msg("Settings loaded")
	return s, nil
}

// SetCredential stores the provider credential. Blank input is rejected.
func (s *Store) SetCredential(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrBlankCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(keyCredential, value); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	s.credential = value
	s.logger.Info().Msg("Credential updated")
	return nil
}

// Credential returns the stored credential, empty when none is set.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// HasCredential reports whether a credential has been saved.
func (s *Store) HasCredential() bool {
	return s.Credential() != ""
}

// SetModel stores the model selection. A blank value is persisted as-is;
// Model falls back to the default at read time.
func (s *Store) SetModel(value string) error {
	value = strings.TrimSpace(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(keyModel, value); err != nil {
		return fmt.Errorf("failed to persist model selection: %w", err)
	}
	s.model = value
	s.logger.Info().Str("model", value).Msg("Model selection updated")
	return nil
}

// Model returns the selected recognition model, or the fixed default
// when no selection has been made.
func (s *Store) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == "" {
		return transcribe.DefaultModel
	}
	return s.model
}
