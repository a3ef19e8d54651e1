package catalog

import (
	"context"
	"fmt"
	"strings"
)

// PriceRule decides whether a price can be paid in cash.
type PriceRule interface {
	IsPayable(amount int64) bool
}

// Service enforces the catalog invariants on top of a Repository: names
// are non-blank and unique, prices are positive and payable.
type Service struct {
	repo   Repository
	prices PriceRule
}

func NewService(repo Repository, prices PriceRule) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
	}
}

func (s *Service) Create(ctx context.Context, name string, price int64) (Product, error) {
	if err := s.checkPrice(price); err != nil {
		return Product{}, err
	}
	if err := checkName(name); err != nil {
		return Product{}, err
	}

	p, err := s.repo.Create(ctx, name, price)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: create %q: %w", name, err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return products, nil
}

// Update applies the supplied fields only. A new name must still be unique.
func (s *Service) Update(ctx context.Context, id int64, u Update) (Product, error) {
	if u.Price != nil {
		if err := s.checkPrice(*u.Price); err != nil {
			return Product{}, err
		}
	}
	if u.Name != nil {
		if err := checkName(*u.Name); err != nil {
			return Product{}, err
		}
	}

	if u.IsEmpty() {
		return s.Get(ctx, id)
	}

	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: update %d: %w", id, err)
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: delete %d: %w", id, err)
	}
	return p, nil
}

// Affordable returns the products whose price does not exceed amount.
func (s *Service) Affordable(ctx context.Context, amount int64) ([]Product, error) {
	products, err := s.repo.ListPricedUpTo(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("catalog: affordable for %d: %w", amount, err)
	}
	return products, nil
}

func (s *Service) checkPrice(price int64) error {
	if price <= 0 || !s.prices.IsPayable(price) {
		return fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}
	return nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}
