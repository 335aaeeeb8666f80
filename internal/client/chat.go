package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zhouzirui/procure-chat/backend/internal/model/chat"
)

// SendMessage posts one user message for the session and returns the
// assistant's reply.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*chat.Reply, error) {
	query := url.Values{"session_id": {sessionID}}
	body := map[string]string{"message": message}

	var reply chat.Reply
	if err := c.do(ctx, http.MethodPost, "/chat/message", query, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
