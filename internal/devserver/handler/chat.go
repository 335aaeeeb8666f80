package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/procure-chat/backend/internal/devserver/notetaker"
	"github.com/zhouzirui/procure-chat/backend/internal/devserver/store"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/pkg/utils"
)

// ChatHandler runs chat turns through the note taker and persists their
// side effects on the form.
type ChatHandler struct {
	sessions *store.Store
	notes    *notetaker.NoteTaker
}

// NewChatHandler creates the chat handler.
func NewChatHandler(sessions *store.Store, notes *notetaker.NoteTaker) *ChatHandler {
	return &ChatHandler{sessions: sessions, notes: notes}
}

// RegisterRoutes mounts the chat endpoint.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/message", h.handleMessage)
}

func (h *ChatHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	stored := &form.Document{}
	history, _ := h.sessions.Messages(r.Context(), sessionID)
	if record, err := h.sessions.Get(r.Context(), sessionID); err == nil {
		stored = record.FormData
	}

	reply, updated, err := h.notes.Respond(r.Context(), stored, history, payload.Message)
	if err != nil {
		log.Printf("[chat] note taker failed for session %s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again or contact the admin if the issue persists.")
		return
	}

	// The turn's side effect lands before the reply goes out, so the
	// client's follow-up pull always observes it.
	h.sessions.Upsert(r.Context(), sessionID, updated)
	if _, err := h.sessions.AppendMessage(r.Context(), sessionID, payload.Message, reply); err != nil {
		// The reply still goes out; only the audit trail is lost.
		log.Printf("[chat] failed to record history for session %s: %v", sessionID, err)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"response": reply,
		"form":     updated,
	})
}
