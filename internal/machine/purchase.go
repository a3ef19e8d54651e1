package machine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jakaprima/vending-machine/internal/logger"
)

// Result describes what the machine dispensed.
type Result struct {
	ProductName string `json:"selected_product_name"`
	Amount      int64  `json:"amount"`
	Quantity    string `json:"quantity"`
	Output      string `json:"output"`
}

// Purchase completes the active session by dispensing the product at index
// of the session's offer. The session is kept when the selection is
// rejected and cleared once the purchase succeeds.
func (m *Machine) Purchase(ctx context.Context, processID string, index int) (Result, error) {
	s, err := m.sessions.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("machine: read session: %w", err)
	}
	if s == nil {
		return Result{}, ErrNoActiveSession
	}
	if s.ProcessID != processID {
		return Result{}, fmt.Errorf("%w: %s", ErrProcessMismatch, processID)
	}
	if index < 0 || index >= len(s.Products) {
		return Result{}, fmt.Errorf("%w: index %d of %d", ErrInvalidSelection, index, len(s.Products))
	}

	product := s.Products[index]

	quantity, err := dispense(s.Amount, product.Price)
	if err != nil {
		return Result{}, err
	}

	released, err := m.sessions.Release(ctx, processID)
	if err != nil {
		return Result{}, fmt.Errorf("machine: release session: %w", err)
	}
	if !released {
		// cancelled, expired or completed concurrently
		return Result{}, ErrNoActiveSession
	}

	qty := strconv.FormatInt(quantity, 10)
	res := Result{
		ProductName: product.Name,
		Amount:      s.Amount,
		Quantity:    qty,
		Output:      qty + " " + product.Name,
	}

	logger.Info("purchase completed", map[string]any{
		"process":  processID,
		"product":  product.Name,
		"amount":   s.Amount,
		"quantity": quantity,
	})

	return res, nil
}

// dispense hands out the product until the inserted amount is used up:
// while anything remains, take one more and subtract its price. The last
// unit may overshoot the amount. The loop never runs more than amount
// times.
func dispense(amount, price int64) (int64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: non-positive price %d", ErrInvalidSelection, price)
	}

	var quantity int64
	remaining := amount
	for i := int64(0); i < amount; i++ {
		if remaining <= 0 {
			break
		}
		remaining -= price
		quantity++
	}

	return quantity, nil
}
