// Package session holds the machine's single money session: the cash that
// has been inserted and the products it can buy, waiting for a selection.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jakaprima/vending-machine/internal/catalog"
)

var ErrUnavailable = errors.New("session store unavailable")

// Session is the machine's state between inserting money and picking a
// product. Products is a snapshot taken at insertion time.
type Session struct {
	ProcessID string            `json:"process"`
	Amount    int64             `json:"amount"`
	Products  []catalog.Product `json:"products"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is a single-slot session holder. There is at most one active
// session; every operation must be atomic on that slot.
type Store interface {
	// Get returns nil, nil when no session is active.
	Get(ctx context.Context) (*Session, error)

	// Create stores s unless a session is already active and reports
	// whether it did.
	Create(ctx context.Context, s Session) (bool, error)

	// Release removes the active session only if it carries processID and
	// reports whether it did.
	Release(ctx context.Context, processID string) (bool, error)

	// Take removes and returns the active session, or nil when empty.
	Take(ctx context.Context) (*Session, error)
}
