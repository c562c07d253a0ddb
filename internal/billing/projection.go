package billing

import (
	"errors"
	"strings"
	"sync"

	"github.com/garsonhq/backend-garson/internal/money"
)

var (
	// ErrCorrelationInUse is returned when staging reuses a pending correlation id.
	ErrCorrelationInUse = errors.New("billing: correlation id already pending")
	// ErrCorrelationUnknown is returned when confirming or rolling back an id
	// that was never staged.
	ErrCorrelationUnknown = errors.New("billing: unknown correlation id")
)

// Projection is the client-facing optimistic view of a bill: the last
// authoritative bill from the server plus payments staged locally while their
// submissions are in flight. Staged entries are keyed by a caller-generated
// correlation id and are either confirmed (replaced wholesale by the server's
// bill) or rolled back when the submission fails. The projection never treats
// its own running total as authoritative.
type Projection struct {
	mu        sync.Mutex
	confirmed Bill
	pending   map[string]Payment
}

// NewProjection starts a projection from an authoritative bill snapshot.
func NewProjection(confirmed Bill) *Projection {
	return &Projection{confirmed: confirmed, pending: make(map[string]Payment)}
}

// Stage validates a payment against the preview balance (confirmed minus all
// pending amounts) and parks it under the correlation id.
func (p *Projection) Stage(correlationID string, payment Payment) error {
	if strings.TrimSpace(correlationID) == "" {
		return ErrCorrelationUnknown
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pending[correlationID]; exists {
		return ErrCorrelationInUse
	}
	preview := p.confirmed
	preview.Paid += p.pendingTotalLocked()
	if err := ValidatePayment(preview, payment); err != nil {
		return err
	}
	p.pending[correlationID] = payment
	return nil
}

// Confirm replaces the local projection with the server's authoritative bill
// and drops the pending entry. The server response wins over any local state.
func (p *Projection) Confirm(correlationID string, authoritative Bill) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pending[correlationID]; !exists {
		return ErrCorrelationUnknown
	}
	delete(p.pending, correlationID)
	p.confirmed = authoritative
	return nil
}

// Rollback discards a staged payment after a failed submission, leaving the
// confirmed bill untouched.
func (p *Projection) Rollback(correlationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pending[correlationID]; !exists {
		return ErrCorrelationUnknown
	}
	delete(p.pending, correlationID)
	return nil
}

// Remaining is the preview balance shown to the waiter while submissions are
// in flight.
func (p *Projection) Remaining() money.Money {
	p.mu.Lock()
	defer p.mu.Unlock()
	remaining := p.confirmed.Remaining() - p.pendingTotalLocked()
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Bill returns the last confirmed bill.
func (p *Projection) Bill() Bill {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.confirmed
}

func (p *Projection) pendingTotalLocked() money.Money {
	var total money.Money
	for _, payment := range p.pending {
		total += payment.Amount
	}
	return total
}
