package session

import (
	"time"

	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
)

// Session is the server-side record of a named conversation-plus-form
// context, as returned by the session service.
type Session struct {
	ID            string         `json:"session_id"`
	FormData      *form.Document `json:"form_data"`
	CreatedAt     time.Time      `json:"created_at"`
	LastUpdatedAt time.Time      `json:"last_updated_at"`
}

// Message is one stored chat turn: the user prompt and the assistant reply.
type Message struct {
	ID        string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
