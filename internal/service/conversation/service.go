package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/procure-chat/backend/internal/model/chat"
)

// Channel sends one user message to the chat service.
type Channel interface {
	SendMessage(ctx context.Context, sessionID, message string) (*chat.Reply, error)
}

// Syncer absorbs chat-driven form mutations after a successful turn.
type Syncer interface {
	Active() bool
	SessionID() string
	Pull(ctx context.Context) error
}

var (
	// ErrMessageRequired rejects empty input locally.
	ErrMessageRequired = errors.New("message must not be empty")
	// ErrNoSession rejects chat before a session is active.
	ErrNoSession = errors.New("no active session")
)

// ChannelError is a failed chat send. The form is assumed unchanged: no pull
// follows a failed turn.
type ChannelError struct {
	Err error
}

func (e *ChannelError) Error() string { return fmt.Sprintf("chat send failed: %v", e.Err) }
func (e *ChannelError) Unwrap() error { return e.Err }

// Service orchestrates one chat turn: send the message, record the reply in
// the local transcript, then pull the form so chat-driven mutations become
// visible. Unsaved local edits are overwritten by that pull by design.
type Service struct {
	channel Channel
	engine  Syncer

	mu      sync.Mutex
	entries []chat.Entry
}

// New wires the conversation service.
func New(channel Channel, engine Syncer) *Service {
	return &Service{channel: channel, engine: engine}
}

// Send performs one chat turn and returns the assistant's reply. On channel
// failure the transcript gains only an error notice and the form is left
// alone.
func (s *Service) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}
	if !s.engine.Active() {
		return "", ErrNoSession
	}

	s.append(chat.SenderUser, message)

	reply, err := s.channel.SendMessage(ctx, s.engine.SessionID(), message)
	if err != nil {
		cerr := &ChannelError{Err: err}
		s.append(chat.SenderNotice, cerr.Error())
		return "", cerr
	}

	s.append(chat.SenderAssistant, reply.Response)

	// The reply may have updated the stored form; the pull is sequenced
	// strictly after the reply so the buffer never reorders against it.
	if err := s.engine.Pull(ctx); err != nil {
		log.Printf("[chat] post-turn form refresh failed: %v", err)
		s.append(chat.SenderNotice, "form refresh failed, use /refresh to retry")
	}

	return reply.Response, nil
}

// Transcript returns a copy of the local conversation log.
func (s *Service) Transcript() []chat.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]chat.Entry, len(s.entries))
	copy(copied, s.entries)
	return copied
}

func (s *Service) append(sender, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, chat.Entry{
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}
