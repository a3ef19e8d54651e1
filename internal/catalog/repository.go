package catalog

import "context"

// Repository persists products. Implementations must return ErrNotFound
// for unknown ids and ErrDuplicateName when a name is already taken, and
// must apply every mutation atomically.
type Repository interface {
	Create(ctx context.Context, name string, price int64) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context) ([]Product, error)
	ListPricedUpTo(ctx context.Context, maxPrice int64) ([]Product, error)
	Update(ctx context.Context, id int64, u Update) (Product, error)
	Delete(ctx context.Context, id int64) (Product, error)
}
