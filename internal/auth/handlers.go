package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garsonhq/backend-garson/internal/common"
)

// Handlers exposes the sign-in endpoint.
type Handlers struct {
	Service *Service
}

// Mount registers auth routes on the router.
func (h Handlers) Mount(r chi.Router) {
	r.Post("/auth/login", h.login)
}

type loginRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

func (h Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if req.Name == "" || req.PIN == "" {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "name and pin are required", nil)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Name, req.PIN)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			common.JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "name or pin is incorrect", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}
