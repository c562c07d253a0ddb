package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/money"
)

// MenuItem is one orderable entry of the menu. The backend stores prices as
// decimal text; Price carries the parsed minor-unit amount.
type MenuItem struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"`
	Price       money.Money `json:"price"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Extra is a menu item modifier with its own unit price.
type Extra struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Price  money.Money `json:"price"`
	Active bool        `json:"active"`
}
