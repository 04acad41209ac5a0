// Package history keeps the ordered list of accepted transcripts,
// write-through persisted so the stored and in-memory forms never drift.
package history

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/store"
)

const storeKey = "transcriptionHistory"

// Store is the persisted transcript history. Items are kept oldest-first;
// newest-first display is a view concern.
type Store struct {
	kv     *store.KV
	logger zerolog.Logger

	mu    sync.Mutex
	items []string
}

// New loads the history from the key-value store.
func New(kv *store.KV, logger zerolog.Logger) (*Store, error) {
	s := &Store{kv: kv, logger: logger}

	var items []string
	if _, err := kv.Get(storeKey, &items); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	s.items = items

	logger.Debug().Int("items", len(items)).Msg("History loaded")
	return s, nil
}

// Append adds a transcript as the newest entry and persists the full
// collection before returning. On persist failure the in-memory list is
// left unchanged.
func (s *Store) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, len(s.items), len(s.items)+1)
	copy(next, s.items)
	next = append(next, text)

	if err := s.kv.Put(storeKey, next); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	s.items = next
	return nil
}

// DeleteAt removes the item at index. An out-of-range index is a no-op;
// the UI only offers valid indices, so this is a safety net.
func (s *Store) DeleteAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		s.logger.Debug().Int("index", index).Int("size", len(s.items)).Msg("DeleteAt out of range, ignoring")
		return nil
	}

	next := make([]string, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)

	if err := s.kv.Put(storeKey, next); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	s.items = next
	return nil
}

// Clear removes every item. Confirmation is the caller's concern; the
// store clears unconditionally.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(storeKey, []string{}); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	s.items = nil
	return nil
}

// List returns the items oldest-first.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored transcripts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
