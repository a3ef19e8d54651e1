// Package catalog manages the products the machine can sell.
package catalog

import "errors"

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product with this name already exists")
	ErrInvalidPrice  = errors.New("price cannot be paid with the accepted denominations")
	ErrInvalidName   = errors.New("product name is required")
)

// Product is a sellable item. Price is in the smallest currency unit the
// machine deals in.
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Update holds the fields of a partial product update. Nil fields are left
// untouched.
type Update struct {
	Name  *string
	Price *int64
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Price == nil
}

// apply returns p with the supplied fields replaced.
func (u Update) apply(p Product) Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	return p
}
