package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/catalog"
	"github.com/garsonhq/backend-garson/internal/common"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

// Handlers exposes open-order management over HTTP.
type Handlers struct {
	Service  *Service
	Validate *validator.Validate
}

// Mount registers order routes on the router.
func (h Handlers) Mount(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.open)
		r.Get("/", h.listOpen)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Post("/lines", h.addLine)
			r.Put("/lines/{lineID}", h.updateLine)
			r.Delete("/lines/{lineID}", h.removeLine)
			r.Post("/abandon", h.abandon)
		})
	})
}

type openRequest struct {
	TableNo int `json:"tableNo" validate:"required,min=1,max=999"`
}

func (h Handlers) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "tableNo must be between 1 and 999", nil)
		return
	}
	waiterID, _ := common.WaiterID(r.Context())
	o, err := h.Service.Open(r.Context(), req.TableNo, waiterID)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, o)
}

func (h Handlers) listOpen(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	orders, err := h.Service.ListOpen(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": orders})
}

func (h Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	o, err := h.Service.Get(r.Context(), id)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, o)
}

type lineRequest struct {
	MenuItemID uuid.UUID                `json:"menuItemId" validate:"required"`
	Qty        int                      `json:"qty"`
	Extras     []pricing.ExtraSelection `json:"extras"`
}

func (h Handlers) addLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	var req lineRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if req.MenuItemID == uuid.Nil || h.validate(req) != nil {
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "menuItemId is required", nil)
		return
	}
	o, err := h.Service.AddLine(r.Context(), orderID, req.MenuItemID, req.Qty, req.Extras)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, o)
}

func (h Handlers) updateLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	lineID, ok := pathUUID(w, r, "lineID")
	if !ok {
		return
	}
	var req lineRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	o, err := h.Service.UpdateLine(r.Context(), orderID, lineID, req.Qty, req.Extras)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, o)
}

func (h Handlers) removeLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	lineID, ok := pathUUID(w, r, "lineID")
	if !ok {
		return
	}
	o, err := h.Service.RemoveLine(r.Context(), orderID, lineID)
	if err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, o)
}

func (h Handlers) abandon(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	if err := h.Service.Abandon(r.Context(), orderID); err != nil {
		renderOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"status": StatusAbandoned})
}

func (h Handlers) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "malformed "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func renderOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "order line not found", nil)
	case errors.Is(err, ErrNotOpen):
		common.JSONError(w, http.StatusConflict, "ORDER_NOT_OPEN", "order is no longer open", nil)
	case errors.Is(err, ErrItemUnavailable):
		common.JSONError(w, http.StatusConflict, "ITEM_UNAVAILABLE", "menu item is not available", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "menu item not found", nil)
	default:
		common.RenderError(w, err)
	}
}
