package waitercall

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/common"
)

// Handlers exposes waiter call endpoints.
type Handlers struct {
	Service *Service
}

// Mount registers waiter call routes on the router.
func (h Handlers) Mount(r chi.Router) {
	r.Route("/waiter-calls", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.listPending)
		r.Post("/{callID}/acknowledge", h.acknowledge)
		r.Post("/{callID}/resolve", h.resolve)
	})
}

type createRequest struct {
	TableNo int `json:"tableNo"`
}

func (h Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if req.TableNo <= 0 {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "tableNo is required", nil)
		return
	}
	call, err := h.Service.Create(r.Context(), req.TableNo)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, call)
}

func (h Handlers) listPending(w http.ResponseWriter, r *http.Request) {
	calls, err := h.Service.ListPending(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": calls})
}

func (h Handlers) acknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Acknowledge)
}

func (h Handlers) resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Resolve)
}

func (h Handlers) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, waiterID string) (Call, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "callID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "malformed callID", nil)
		return
	}
	waiterID, _ := common.WaiterID(r.Context())
	call, err := fn(r.Context(), id, waiterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusConflict, "CALL_NOT_PENDING", "call not found or already handled", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, call)
}
