package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrWaiterNotFound is returned when a staff account lookup matches no row.
var ErrWaiterNotFound = errors.New("auth: waiter not found")

// Role gates manager-only operations such as resetting PINs.
type Role string

const (
	RoleWaiter  Role = "waiter"
	RoleManager Role = "manager"
)

// Waiter is a staff account that signs in with a short PIN.
type Waiter struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	PINHash   string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
