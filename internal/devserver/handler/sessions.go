package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/procure-chat/backend/internal/devserver/store"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/pkg/utils"
)

// SessionHandler exposes the session CRUD surface.
type SessionHandler struct {
	sessions *store.Store
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(sessions *store.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes mounts the session endpoints.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create_session", h.handleCreate)
	r.Get("/get_all_sessions", h.handleList)
	r.Get("/get_session_data/{sessionID}", h.handleGet)
	r.Get("/get_messages_history/{sessionID}", h.handleMessages)
	r.Put("/update_session_form/{sessionID}", h.handleUpdateForm)
	r.Delete("/delete_session/{sessionID}", h.handleDelete)
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	record, err := h.sessions.Create(r.Context(), sessionID)
	if err != nil {
		log.Printf("[sessions] create %s failed: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *SessionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sessions.List(r.Context()))
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	record, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Session %s does not exist", sessionID))
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *SessionHandler) handleMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.sessions.Messages(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Session %s does not exist", sessionID))
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *SessionHandler) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var doc form.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	// Server-side normalization: canonical dates, conditional fields cleared
	// when the contract type does not call for them. Values the normalizer
	// cannot interpret are stored verbatim.
	if err := doc.Normalize(); err != nil {
		log.Printf("[sessions] update %s kept non-canonical values: %v", sessionID, err)
	}

	record, err := h.sessions.UpdateForm(r.Context(), sessionID, &doc)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Session %s does not exist", sessionID))
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Session %s does not exist", sessionID))
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
