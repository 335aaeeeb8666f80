package formsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
)

// Store is the remote keeper of the form document, one per session.
type Store interface {
	FetchForm(ctx context.Context, sessionID string) (*form.Document, error)
	UpdateForm(ctx context.Context, sessionID string, doc *form.Document) (*session.Session, error)
}

// SyncError wraps a failed pull or push against the store.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string { return fmt.Sprintf("form %s failed: %v", e.Op, e.Err) }
func (e *SyncError) Unwrap() error { return e.Err }

// ErrNotActive rejects edits before a session is bound.
var ErrNotActive = errors.New("no active session")

// Engine keeps the local edit buffer consistent with the store. The buffer
// is overwritten wholesale by every successful pull: the chat channel is the
// authoritative mutator during conversation, so unsaved local edits must be
// pushed before the next chat turn to survive. Pushes are never applied to
// the buffer optimistically; the confirming pull is the only way a push
// becomes visible locally.
type Engine struct {
	store Store

	mu        sync.RWMutex
	sessionID string
	buffer    form.Document
}

// New creates an engine in the unbound state.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Bind activates the engine for a session. The binding is one-shot per
// process, matching the single-shot session lifecycle; later calls are
// ignored.
func (e *Engine) Bind(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessionID != "" {
		log.Printf("[sync] ignoring rebind to %s, already bound to %s", sessionID, e.sessionID)
		return
	}
	e.sessionID = sessionID
}

// Active reports whether a session is bound.
func (e *Engine) Active() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessionID != ""
}

// SessionID returns the bound session identifier, or "".
func (e *Engine) SessionID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessionID
}

// Snapshot returns a copy of the local edit buffer.
func (e *Engine) Snapshot() form.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buffer
}

// Pull fetches the stored document and overwrites the buffer with it,
// last-pulled-wins. A no-op before a session is bound. On failure the buffer
// is left untouched.
func (e *Engine) Pull(ctx context.Context) error {
	e.mu.RLock()
	id := e.sessionID
	e.mu.RUnlock()
	if id == "" {
		return nil
	}

	doc, err := e.store.FetchForm(ctx, id)
	if err != nil {
		return &SyncError{Op: "pull", Err: err}
	}
	if doc == nil {
		doc = &form.Document{}
	}

	// The server copy is authoritative; a date it stored in an unexpected
	// shape is kept verbatim rather than rejected.
	if err := doc.Normalize(); err != nil {
		log.Printf("[sync] pulled document has non-canonical dates: %v", err)
	}

	e.mu.Lock()
	e.buffer = *doc
	e.mu.Unlock()
	return nil
}

// Push validates and writes the full document to the store, then pulls the
// now-authoritative copy back into the buffer. A no-op before a session is
// bound. Validation failure blocks the network call entirely, and any
// failure leaves the buffer exactly as it was.
func (e *Engine) Push(ctx context.Context, doc *form.Document) error {
	e.mu.RLock()
	id := e.sessionID
	e.mu.RUnlock()
	if id == "" {
		return nil
	}

	outgoing := doc.Clone()
	if err := outgoing.Normalize(); err != nil {
		return err
	}
	if err := form.Validate(outgoing); err != nil {
		return err
	}

	if _, err := e.store.UpdateForm(ctx, id, outgoing); err != nil {
		return &SyncError{Op: "push", Err: err}
	}

	// Confirming pull: picks up server-side normalization and proves the
	// write landed before the buffer reflects it.
	return e.Pull(ctx)
}

// Validate runs the required-field check without touching the network.
func (e *Engine) Validate(doc *form.Document) error {
	return form.Validate(doc)
}

// SetField records a user edit into the buffer. Date fields are converted to
// canonical form on the way in; bad input is rejected before it can reach
// the server.
func (e *Engine) SetField(path, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessionID == "" {
		return ErrNotActive
	}

	field, ok := form.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", form.ErrUnknownField, path)
	}
	if field.Date {
		normalized, err := form.NormalizeDate(value)
		if err != nil {
			return err
		}
		value = normalized
	}
	field.Set(&e.buffer, value)

	// Switching away from an external contract hides the conditional fields.
	if nerr := e.buffer.Normalize(); nerr != nil {
		log.Printf("[sync] buffer normalize after edit: %v", nerr)
	}
	return nil
}
