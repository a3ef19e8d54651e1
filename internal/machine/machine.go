// Package machine runs the money session: money is inserted, the machine
// offers what that money can buy, and a selection completes the purchase.
//
// The session lives in a session.Store with a single slot, so at most one
// customer is served at a time. Inserting while a session is active and
// purchasing without one are reported errors.
package machine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/logger"
	"github.com/jakaprima/vending-machine/internal/session"
)

// BusyDescription tells the customer what to do while a session is active.
const BusyDescription = "machine still process money. select product to buy"

var (
	ErrUnsupportedAmount = errors.New("amount cannot be paid with the accepted denominations")
	ErrNoActiveSession   = errors.New("no active money session")
	ErrInvalidSelection  = errors.New("selected product is not available in this session")
	ErrProcessMismatch   = errors.New("process does not match the active session")
)

// BusyError is returned when money is inserted while another session is
// waiting for a selection. Products is that session's offer.
type BusyError struct {
	Products []catalog.Product
}

func (e *BusyError) Error() string {
	return BusyDescription
}

// Catalog is the part of the product catalog the machine reads.
type Catalog interface {
	Affordable(ctx context.Context, amount int64) ([]catalog.Product, error)
}

type Machine struct {
	catalog  Catalog
	sessions session.Store
	prices   catalog.PriceRule
	newID    func() string
	now      func() time.Time
}

type Option func(*Machine)

// WithIDGenerator replaces the process token generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// WithClock replaces the clock used to stamp sessions.
func WithClock(fn func() time.Time) Option {
	return func(m *Machine) { m.now = fn }
}

func New(c Catalog, sessions session.Store, prices catalog.PriceRule, opts ...Option) *Machine {
	m := &Machine{
		catalog:  c,
		sessions: sessions,
		prices:   prices,
		newID:    session.NewProcessID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InsertMoney opens a session for amount and returns it with every product
// priced at or below amount.
func (m *Machine) InsertMoney(ctx context.Context, amount int64) (session.Session, error) {
	current, err := m.sessions.Get(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("machine: read session: %w", err)
	}
	if current != nil {
		return session.Session{}, &BusyError{Products: current.Products}
	}

	if amount <= 0 || !m.prices.IsPayable(amount) {
		return session.Session{}, fmt.Errorf("%w: %d", ErrUnsupportedAmount, amount)
	}

	products, err := m.catalog.Affordable(ctx, amount)
	if err != nil {
		return session.Session{}, fmt.Errorf("machine: list affordable products: %w", err)
	}
	if products == nil {
		products = []catalog.Product{}
	}

	s := session.Session{
		ProcessID: m.newID(),
		Amount:    amount,
		Products:  products,
		CreatedAt: m.now().UTC(),
	}

	created, err := m.sessions.Create(ctx, s)
	if err != nil {
		return session.Session{}, fmt.Errorf("machine: store session: %w", err)
	}
	if !created {
		// another insert won the slot after our read
		return session.Session{}, m.busy(ctx)
	}

	logger.Info("money inserted", map[string]any{
		"process":    s.ProcessID,
		"amount":     s.Amount,
		"affordable": len(s.Products),
	})

	return s, nil
}

// Current returns the active session.
func (m *Machine) Current(ctx context.Context) (session.Session, error) {
	s, err := m.sessions.Get(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("machine: read session: %w", err)
	}
	if s == nil {
		return session.Session{}, ErrNoActiveSession
	}
	return *s, nil
}

// Cancel ends the active session without a purchase and returns it so the
// inserted amount can be handed back.
func (m *Machine) Cancel(ctx context.Context) (session.Session, error) {
	s, err := m.sessions.Take(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("machine: take session: %w", err)
	}
	if s == nil {
		return session.Session{}, ErrNoActiveSession
	}

	logger.Info("session cancelled", map[string]any{
		"process": s.ProcessID,
		"refund":  s.Amount,
	})

	return *s, nil
}

func (m *Machine) busy(ctx context.Context) error {
	current, err := m.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("machine: read session: %w", err)
	}
	if current == nil {
		return &BusyError{Products: []catalog.Product{}}
	}
	return &BusyError{Products: current.Products}
}
