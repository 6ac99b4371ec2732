package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id, seller_id, name, description, category, price, offer_price, images, rating_avg, rating_count, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.OfferPrice, &p.Images, &p.RatingAverage, &p.RatingCount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListProducts returns a filtered page of the catalog plus the total count.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db().QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	sql := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		productColumns, cond, len(args)-1, len(args))
	rows, err := s.db().Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := s.db().QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// GetProductsByIDs fetches the named products keyed by id. Missing ids are
// simply absent from the map; callers decide how to treat the gap.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error) {
	if len(ids) == 0 {
		return map[int64]Product{}, nil
	}
	rows, err := s.db().Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// CreateProduct inserts a listing and returns it with generated fields.
func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	row := s.db().QueryRow(ctx, `
		INSERT INTO products (seller_id, name, description, category, price, offer_price, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		p.SellerID, p.Name, p.Description, p.Category, p.Price, p.OfferPrice, p.Images)
	return scanProduct(row)
}

// UpdateProduct updates a listing scoped to its seller.
func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	row := s.db().QueryRow(ctx, `
		UPDATE products
		SET name = $3, description = $4, category = $5, price = $6, offer_price = $7, images = $8
		WHERE id = $1 AND seller_id = $2
		RETURNING `+productColumns,
		p.ID, p.SellerID, p.Name, p.Description, p.Category, p.Price, p.OfferPrice, p.Images)
	return scanProduct(row)
}

// DeleteProduct removes a listing scoped to its seller.
func (s *Store) DeleteProduct(ctx context.Context, id int64, sellerID string) error {
	tag, err := s.db().Exec(ctx, "DELETE FROM products WHERE id = $1 AND seller_id = $2", id, sellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSellerProducts returns a seller's own listings.
func (s *Store) ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]Product, int, error) {
	var total int
	if err := s.db().QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE seller_id = $1", sellerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db().Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE seller_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		sellerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// RefreshProductRating recomputes the denormalised rating fields from reviews.
func (s *Store) RefreshProductRating(ctx context.Context, productID int64) error {
	_, err := s.db().Exec(ctx, `
		UPDATE products p
		SET rating_avg = COALESCE(r.avg, 0), rating_count = COALESCE(r.cnt, 0)
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt
			FROM reviews WHERE product_id = $1
		) r
		WHERE p.id = $1`, productID)
	return err
}
