package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/procure-chat/backend/internal/devserver/notetaker"
	"github.com/zhouzirui/procure-chat/backend/internal/devserver/store"
	middlewarePkg "github.com/zhouzirui/procure-chat/backend/internal/middleware"
)

// NewRouter wires the HTTP surface consumed by the chat-and-form client.
func NewRouter(sessions *store.Store, notes *notetaker.NoteTaker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	uuidHandler := NewUUIDHandler()
	sessionHandler := NewSessionHandler(sessions)
	chatHandler := NewChatHandler(sessions, notes)

	r.Route("/uuid", uuidHandler.RegisterRoutes)
	r.Route("/sessions", sessionHandler.RegisterRoutes)
	r.Route("/chat", chatHandler.RegisterRoutes)

	return r
}
