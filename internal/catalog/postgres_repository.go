package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jakaprima/vending-machine/internal/db"
)

const uniqueViolation = "23505"

// PostgresRepository stores products in the products table created by the
// db migrations.
type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name string, price int64) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price)
		VALUES ($1, $2)
		RETURNING id, name, price
	`, name, price).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		return Product{}, mapError("insert", err)
	}

	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		return Product{}, mapError("select", err)
	}

	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, `
		SELECT id, name, price
		FROM products
		ORDER BY id
	`)
}

func (r *PostgresRepository) ListPricedUpTo(ctx context.Context, maxPrice int64) ([]Product, error) {
	return r.query(ctx, `
		SELECT id, name, price
		FROM products
		WHERE price <= $1
		ORDER BY id
	`, maxPrice)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, u Update) (Product, error) {
	var (
		name  sql.NullString
		price sql.NullInt64
		p     Product
	)
	if u.Name != nil {
		name = sql.NullString{String: *u.Name, Valid: true}
	}
	if u.Price != nil {
		price = sql.NullInt64{Int64: *u.Price, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
		    price = COALESCE($3, price),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, price
	`, id, name, price).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		return Product{}, mapError("update", err)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name, price
	`, id).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		return Product{}, mapError("delete", err)
	}

	return p, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateName
	}

	return fmt.Errorf("%s products: %w", op, err)
}
