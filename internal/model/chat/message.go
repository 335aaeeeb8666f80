package chat

import "time"

// Senders for transcript entries.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
	SenderNotice    = "notice"
)

// Entry is one line of the local conversation transcript. Notices carry
// user-visible errors and never reach the backend.
type Entry struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
