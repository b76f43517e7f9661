package main

import "sync"

// noteStore is a tiny host-local service, private to the host scope that
// registered it.
type noteStore struct {
	mu    sync.Mutex
	owner string
	notes []string
}

func newNoteStore(owner string) *noteStore {
	return &noteStore{owner: owner}
}

func (s *noteStore) Add(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, text)
}

func (s *noteStore) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.notes))
	copy(out, s.notes)
	return out
}
