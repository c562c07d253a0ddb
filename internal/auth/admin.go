package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/common"
)

type adminStore interface {
	GetWaiter(ctx context.Context, id uuid.UUID) (Waiter, error)
	InsertWaiter(ctx context.Context, name string, role Role, pinHash string) (uuid.UUID, error)
	UpdateWaiterPIN(ctx context.Context, id uuid.UUID, pinHash string) error
}

// AdminHandlers manages staff accounts. Mount behind a manager-role check.
type AdminHandlers struct {
	Waiters adminStore
}

// Mount registers staff management routes on the router.
func (h AdminHandlers) Mount(r chi.Router) {
	r.Route("/admin/waiters", func(r chi.Router) {
		r.Post("/", h.createWaiter)
		r.Put("/{waiterID}/pin", h.resetPIN)
	})
}

type createWaiterRequest struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	PIN  string `json:"pin"`
}

func (h AdminHandlers) createWaiter(w http.ResponseWriter, r *http.Request) {
	var req createWaiterRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.PIN) < 4 {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "name and a PIN of at least 4 digits are required", nil)
		return
	}
	role := req.Role
	if role == "" {
		role = RoleWaiter
	}
	if role != RoleWaiter && role != RoleManager {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ROLE", "role must be waiter or manager", nil)
		return
	}
	hash, err := HashPIN(req.PIN)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	id, err := h.Waiters.InsertWaiter(r.Context(), req.Name, role, hash)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	waiter, err := h.Waiters.GetWaiter(r.Context(), id)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, waiter)
}

type resetPINRequest struct {
	PIN string `json:"pin"`
}

func (h AdminHandlers) resetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "waiterID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "malformed waiterID", nil)
		return
	}
	var req resetPINRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if len(req.PIN) < 4 {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "a PIN of at least 4 digits is required", nil)
		return
	}
	hash, err := HashPIN(req.PIN)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Waiters.UpdateWaiterPIN(r.Context(), id, hash); err != nil {
		if errors.Is(err, ErrWaiterNotFound) {
			common.JSONError(w, http.StatusNotFound, "WAITER_NOT_FOUND", "waiter not found", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}
