package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
)

// State of the single-shot session lifecycle. Unbound and Failed accept a
// new Submit; Creating means one is in flight; Active is terminal for the
// process.
type State string

const (
	StateUnbound  State = "unbound"
	StateCreating State = "creating"
	StateActive   State = "active"
	StateFailed   State = "failed"
)

// Resolver maps a session name to its stable identifier.
type Resolver interface {
	ResolveIdentifier(ctx context.Context, name string) (string, error)
}

// Creator provisions the persisted session for an identifier.
type Creator interface {
	CreateSession(ctx context.Context, sessionID string) (*session.Session, error)
}

// Syncer is bound and primed once the session becomes active.
type Syncer interface {
	Bind(sessionID string)
	Pull(ctx context.Context) error
}

var (
	// ErrNameRequired rejects an empty session name locally, before any
	// network call.
	ErrNameRequired = errors.New("session name is required")
	// ErrSubmitInFlight rejects a duplicate Submit while one is running.
	ErrSubmitInFlight = errors.New("session creation already in progress")
	// ErrAlreadyActive rejects Submit once a session is active; there is no
	// way back short of restarting the process.
	ErrAlreadyActive = errors.New("session already active")
)

// ResolutionError is a failed name-to-identifier lookup.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving session name %q: %v", e.Name, e.Err)
}
func (e *ResolutionError) Unwrap() error { return e.Err }

// CreationError is a failed session creation after a successful resolution.
type CreationError struct {
	SessionID string
	Err       error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("creating session %s: %v", e.SessionID, e.Err)
}
func (e *CreationError) Unwrap() error { return e.Err }

// Lifecycle drives the one-way transition from no session to an active one
// and gates everything else behind it.
type Lifecycle struct {
	resolver Resolver
	creator  Creator
	engine   Syncer

	mu        sync.Mutex
	state     State
	name      string
	sessionID string
}

// New returns an unbound lifecycle.
func New(resolver Resolver, creator Creator, engine Syncer) *Lifecycle {
	return &Lifecycle{
		resolver: resolver,
		creator:  creator,
		engine:   engine,
		state:    StateUnbound,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SessionID returns the active session identifier, or "".
func (l *Lifecycle) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

// Name returns the human-readable name the active session was created from.
func (l *Lifecycle) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

// Submit resolves the name, creates the session, binds the sync engine and
// performs the one initial pull. A failed resolution or creation moves the
// lifecycle to Failed, from which Submit may simply be called again.
func (l *Lifecycle) Submit(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}

	l.mu.Lock()
	switch l.state {
	case StateCreating:
		l.mu.Unlock()
		return "", ErrSubmitInFlight
	case StateActive:
		id := l.sessionID
		l.mu.Unlock()
		return id, ErrAlreadyActive
	}
	l.state = StateCreating
	l.mu.Unlock()

	id, err := l.resolver.ResolveIdentifier(ctx, name)
	if err != nil {
		l.fail()
		return "", &ResolutionError{Name: name, Err: err}
	}

	if _, err := l.creator.CreateSession(ctx, id); err != nil {
		l.fail()
		return "", &CreationError{SessionID: id, Err: err}
	}

	l.mu.Lock()
	l.state = StateActive
	l.name = name
	l.sessionID = id
	l.mu.Unlock()

	l.engine.Bind(id)
	if err := l.engine.Pull(ctx); err != nil {
		// The session exists and stays active; the caller can refresh again.
		log.Printf("[session] initial pull for %s failed: %v", id, err)
		return id, err
	}
	return id, nil
}

func (l *Lifecycle) fail() {
	l.mu.Lock()
	l.state = StateFailed
	l.mu.Unlock()
}
