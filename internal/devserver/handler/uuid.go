package handler

import (
	"crypto/md5"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zhouzirui/procure-chat/backend/pkg/utils"
)

// UUIDHandler converts session names to stable identifiers.
type UUIDHandler struct{}

// NewUUIDHandler creates the converter handler.
func NewUUIDHandler() *UUIDHandler {
	return &UUIDHandler{}
}

// RegisterRoutes mounts the conversion endpoint.
func (h *UUIDHandler) RegisterRoutes(r chi.Router) {
	r.Get("/convert-string/{name}", h.handleConvert)
}

// handleConvert derives a UUID from the md5 of the name, so the same name
// always resolves to the same identifier.
func (h *UUIDHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		utils.RespondError(w, http.StatusBadRequest, "String ID cannot be empty.")
		return
	}

	sum := md5.Sum([]byte(name))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to derive identifier")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"uuid": id.String()})
}
