package chat

import "github.com/zhouzirui/procure-chat/backend/internal/model/form"

// Reply is the chat service's answer to one message. Form echoes the updated
// document when the turn changed it; the stored copy remains authoritative
// and is re-fetched instead of trusted.
type Reply struct {
	Response string         `json:"response"`
	Form     *form.Document `json:"form,omitempty"`
}
