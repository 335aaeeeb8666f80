package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
)

var (
	// ErrSessionNotFound is returned for operations on unknown sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyID rejects session creation before touching the map.
	ErrEmptyID = errors.New("session id must not be empty")
)

// Store keeps sessions and their chat history in memory. It backs the
// devserver only; durability is out of scope there.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	messages map[string][]session.Message
}

// New bootstraps an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]session.Session),
		messages: make(map[string][]session.Message),
	}
}

// Create provisions a session seeded with an empty form. Creating an
// existing identifier returns the stored record unchanged, so re-submitting
// the same name is harmless.
func (s *Store) Create(_ context.Context, sessionID string) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sessionID]; ok {
		return cloneSession(existing), nil
	}

	now := time.Now().UTC()
	record := session.Session{
		ID:            sessionID,
		FormData:      &form.Document{},
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	s.sessions[sessionID] = record
	s.messages[sessionID] = make([]session.Message, 0, 16)
	return cloneSession(record), nil
}

// Get retrieves a session by identifier.
func (s *Store) Get(_ context.Context, sessionID string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	return cloneSession(record), nil
}

// List returns every stored session.
func (s *Store) List(_ context.Context) []session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session.Session, 0, len(s.sessions))
	for _, record := range s.sessions {
		out = append(out, cloneSession(record))
	}
	return out
}

// UpdateForm replaces the form of an existing session.
func (s *Store) UpdateForm(_ context.Context, sessionID string, doc *form.Document) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}

	record.FormData = doc.Clone()
	record.LastUpdatedAt = time.Now().UTC()
	s.sessions[sessionID] = record
	return cloneSession(record), nil
}

// Upsert writes the form whether or not the session exists yet. The chat
// path uses it so a turn can never be lost to a missing record.
func (s *Store) Upsert(_ context.Context, sessionID string, doc *form.Document) session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record, ok := s.sessions[sessionID]
	if !ok {
		record = session.Session{ID: sessionID, CreatedAt: now}
		s.messages[sessionID] = make([]session.Message, 0, 16)
	}
	record.FormData = doc.Clone()
	record.LastUpdatedAt = now
	s.sessions[sessionID] = record
	return cloneSession(record)
}

// AppendMessage stores one chat turn for the session.
func (s *Store) AppendMessage(_ context.Context, sessionID, prompt, response string) (session.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return session.Message{}, ErrSessionNotFound
	}

	message := session.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Prompt:    prompt,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)
	return message, nil
}

// Messages returns the stored turns for a session.
func (s *Store) Messages(_ context.Context, sessionID string) ([]session.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]session.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Delete removes a session and its history.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

func cloneSession(record session.Session) session.Session {
	record.FormData = record.FormData.Clone()
	return record
}
