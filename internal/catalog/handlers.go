package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/common"
)

// Handlers exposes the read-side catalog endpoints.
type Handlers struct {
	Service *Service
}

// Mount registers catalog routes on the router.
func (h Handlers) Mount(r chi.Router) {
	r.Get("/menu", h.listMenu)
	r.Get("/menu/{itemID}", h.getMenuItem)
	r.Get("/extras", h.listExtras)
	r.Get("/discounts", h.listDiscounts)
}

func (h Handlers) listMenu(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	result, err := h.Service.ListMenu(r.Context(), page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}

func (h Handlers) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "malformed itemID", nil)
		return
	}
	item, err := h.Service.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "menu item not found", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, item)
}

func (h Handlers) listExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.Service.ListExtras(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": extras})
}

func (h Handlers) listDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.Service.ListDiscounts(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": discounts})
}
