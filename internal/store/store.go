// Package store holds the text extracted from ingested sources for the
// lifetime of the process.
package store

import (
	"sync"

	"github.com/MikeSquared-Agency/joey/internal/truncate"
)

// Entry is one ingested source. Text never exceeds the store's per-source
// character budget.
type Entry struct {
	Identifier string
	Text       string
}

// Store maps a source identifier (filename or URL) to its text. Iteration
// follows first-insertion order; overwriting an identifier keeps its slot.
type Store struct {
	maxSourceChars int

	mu      sync.RWMutex
	order   []string
	entries map[string]string
}

func New(maxSourceChars int) *Store {
	return &Store{
		maxSourceChars: maxSourceChars,
		entries:        make(map[string]string),
	}
}

// Put stores the first maxSourceChars characters of rawText under
// identifier, replacing any earlier text for it.
func (s *Store) Put(identifier, rawText string) {
	text := truncate.Head(rawText, s.maxSourceChars)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[identifier]; !ok {
		s.order = append(s.order, identifier)
	}
	s.entries[identifier] = text
}

// Snapshot returns the stored texts in insertion order.
func (s *Store) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := make([]string, 0, len(s.order))
	for _, id := range s.order {
		texts = append(texts, s.entries[id])
	}
	return texts
}

// Entries returns identifier/text pairs in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{Identifier: id, Text: s.entries[id]})
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// MaxSourceChars is the per-source character budget.
func (s *Store) MaxSourceChars() int {
	return s.maxSourceChars
}
