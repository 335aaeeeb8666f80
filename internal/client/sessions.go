package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
)

// CreateSession provisions a persisted session for the identifier. Creating
// the same identifier twice is accepted by the backend, which seeds the form
// once.
func (c *Client) CreateSession(ctx context.Context, sessionID string) (*session.Session, error) {
	query := url.Values{"session_id": {sessionID}}
	var created session.Session
	if err := c.do(ctx, http.MethodPost, "/sessions/create_session", query, nil, &created); err != nil {
		return nil, err
	}
	// Some backends confirm with a bare 2xx instead of echoing the record.
	if created.ID == "" {
		created.ID = sessionID
	}
	return &created, nil
}

// FetchForm reads the authoritative form document for a session.
func (c *Client) FetchForm(ctx context.Context, sessionID string) (*form.Document, error) {
	var record session.Session
	if err := c.do(ctx, http.MethodGet, "/sessions/get_session_data/"+url.PathEscape(sessionID), nil, nil, &record); err != nil {
		return nil, err
	}
	if record.FormData == nil {
		record.FormData = &form.Document{}
	}
	return record.FormData, nil
}

// UpdateForm writes the full form document for a session and returns the
// saved record, including any server-side normalization.
func (c *Client) UpdateForm(ctx context.Context, sessionID string, doc *form.Document) (*session.Session, error) {
	var saved session.Session
	if err := c.do(ctx, http.MethodPut, "/sessions/update_session_form/"+url.PathEscape(sessionID), nil, doc, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListSessions returns every stored session.
func (c *Client) ListSessions(ctx context.Context) ([]session.Session, error) {
	var sessions []session.Session
	if err := c.do(ctx, http.MethodGet, "/sessions/get_all_sessions", nil, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// MessageHistory returns the stored chat turns for a session.
func (c *Client) MessageHistory(ctx context.Context, sessionID string) ([]session.Message, error) {
	var messages []session.Message
	if err := c.do(ctx, http.MethodGet, "/sessions/get_messages_history/"+url.PathEscape(sessionID), nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteSession removes a session and its history.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/delete_session/"+url.PathEscape(sessionID), nil, nil, nil)
}
