package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/common"
	"github.com/garsonhq/backend-garson/internal/discount"
	"github.com/garsonhq/backend-garson/internal/money"
	"github.com/garsonhq/backend-garson/internal/order"
	"github.com/garsonhq/backend-garson/internal/pricing"
)

// Handlers exposes the bill lifecycle over HTTP.
type Handlers struct {
	Service *Service
}

// Mount registers billing routes on the router.
func (h Handlers) Mount(r chi.Router) {
	r.Post("/orders/{orderID}/finalize", h.finalize)
	r.Get("/orders/{orderID}/bill", h.getByOrder)
	r.Route("/bills/{billID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/events", h.history)
		r.Post("/discounts", h.applyDiscounts)
		r.Put("/service-fee", h.setServiceFee)
		r.Post("/payments", h.recordPayment)
		r.Post("/cancel", h.cancel)
	})
}

func (h Handlers) finalize(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	bill, err := h.Service.Finalize(r.Context(), orderID)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, billResponse(bill))
}

func (h Handlers) get(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	bill, err := h.Service.Get(r.Context(), billID)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, billResponse(bill))
}

func (h Handlers) getByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	bill, err := h.Service.GetByOrder(r.Context(), orderID)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, billResponse(bill))
}

func (h Handlers) history(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 50)
	evs, err := h.Service.History(r.Context(), billID, limit)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(evs))
	for _, ev := range evs {
		out = append(out, map[string]any{
			"id":         ev.ID,
			"topic":      ev.Topic,
			"payload":    json.RawMessage(ev.Payload),
			"occurredAt": ev.OccurredAt,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

type discountsRequest struct {
	DiscountIDs  []uuid.UUID `json:"discountIds"`
	CustomAmount string      `json:"customAmount,omitempty"`
}

func (h Handlers) applyDiscounts(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	var req discountsRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	custom := money.Parse(req.CustomAmount)
	bill, err := h.Service.ApplyDiscounts(r.Context(), billID, req.DiscountIDs, custom)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, billResponse(bill))
}

type serviceFeeRequest struct {
	Amount     string `json:"amount,omitempty"`
	PercentBps int    `json:"percentBps,omitempty"`
}

func (h Handlers) setServiceFee(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	var req serviceFeeRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	cfg := pricing.ServiceFeeConfig{
		Amount:     money.Parse(req.Amount),
		PercentBps: req.PercentBps,
	}
	bill, err := h.Service.SetServiceFee(r.Context(), billID, cfg)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, billResponse(bill))
}

type paymentRequest struct {
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (h Handlers) recordPayment(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	var req paymentRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	payment := Payment{
		Amount:        money.Parse(req.Amount),
		Method:        Method(req.Method),
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	}
	bill, err := h.Service.RecordPayment(r.Context(), billID, payment)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, billResponse(bill))
}

func (h Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	billID, ok := h.pathUUID(w, r, "billID")
	if !ok {
		return
	}
	bill, err := h.Service.Cancel(r.Context(), billID)
	if err != nil {
		renderBillingError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, billResponse(bill))
}

func (h Handlers) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "malformed "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// billResponse renders a bill with display strings alongside the minor-unit
// amounts and the derived settlement state.
func billResponse(b Bill) map[string]any {
	return map[string]any{
		"bill":             b,
		"state":            b.State(),
		"remaining":        b.Remaining(),
		"totalDisplay":     money.Format(b.Total),
		"remainingDisplay": money.Format(b.Remaining()),
	}
}

func renderBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBillNotFound):
		common.JSONError(w, http.StatusNotFound, "BILL_NOT_FOUND", "bill not found", nil)
	case errors.Is(err, order.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrOrderNotOpen):
		common.JSONError(w, http.StatusConflict, "ORDER_NOT_OPEN", "order is no longer open", nil)
	case errors.Is(err, ErrInvalidAmount):
		common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "payment amount must be positive", nil)
	case errors.Is(err, ErrAmountExceedsRemaining):
		common.JSONError(w, http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_REMAINING", "payment exceeds remaining balance", nil)
	case errors.Is(err, ErrMissingTransactionID):
		common.JSONError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "bank card payments require transactionId", nil)
	case errors.Is(err, ErrUnknownMethod):
		common.JSONError(w, http.StatusBadRequest, "UNKNOWN_METHOD", "unknown payment method", nil)
	case errors.Is(err, ErrBillClosed):
		common.JSONError(w, http.StatusConflict, "BILL_CLOSED", "bill no longer accepts changes", nil)
	case errors.Is(err, ErrBillNotCancellable):
		common.JSONError(w, http.StatusConflict, "BILL_NOT_CANCELLABLE", "bill has payments and cannot be cancelled", nil)
	case errors.Is(err, discount.ErrNoSelection):
		common.JSONError(w, http.StatusBadRequest, "NO_SELECTION", "select a discount or provide a custom amount", nil)
	case errors.Is(err, discount.ErrUnknownDiscount):
		common.JSONError(w, http.StatusNotFound, "UNKNOWN_DISCOUNT", "discount not found", nil)
	case errors.Is(err, discount.ErrDiscountInactive):
		common.JSONError(w, http.StatusConflict, "DISCOUNT_INACTIVE", "discount is not active", nil)
	default:
		common.RenderError(w, err)
	}
}
