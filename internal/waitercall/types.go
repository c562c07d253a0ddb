package waitercall

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a call id matches no row or the transition
// raced another waiter.
var ErrNotFound = errors.New("waitercall: not found")

// Status is the lifecycle of a table's call button press.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// Call is one request for attention raised from a table.
type Call struct {
	ID         uuid.UUID  `json:"id"`
	TableNo    int        `json:"tableNo"`
	Status     Status     `json:"status"`
	WaiterID   string     `json:"waiterId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}
