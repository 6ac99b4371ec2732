package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const promoColumns = `code, discount_percent, allowed_user_ids, active, expires_at, created_at`

func scanPromo(row pgx.Row) (Promotion, error) {
	var p Promotion
	err := row.Scan(&p.Code, &p.DiscountPercent, &p.AllowedUserIDs, &p.Active, &p.ExpiresAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Promotion{}, ErrNotFound
	}
	return p, err
}

// CreatePromo inserts a promotion. The code must already be normalized by the
// caller. Returns ErrDuplicate when the code exists.
func (s *Store) CreatePromo(ctx context.Context, p Promotion) (Promotion, error) {
	row := s.db().QueryRow(ctx, `
		INSERT INTO promotions (code, discount_percent, allowed_user_ids, active, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+promoColumns,
		p.Code, p.DiscountPercent, p.AllowedUserIDs, p.Active, p.ExpiresAt)
	created, err := scanPromo(row)
	if isUniqueViolation(err) {
		return Promotion{}, ErrDuplicate
	}
	return created, err
}

// GetPromoByCode fetches one promotion by normalized code.
func (s *Store) GetPromoByCode(ctx context.Context, code string) (Promotion, error) {
	row := s.db().QueryRow(ctx, "SELECT "+promoColumns+" FROM promotions WHERE code = $1", code)
	return scanPromo(row)
}

// ListActivePromos returns active, unexpired promotions.
func (s *Store) ListActivePromos(ctx context.Context) ([]Promotion, error) {
	rows, err := s.db().Query(ctx,
		"SELECT "+promoColumns+" FROM promotions WHERE active AND (expires_at IS NULL OR expires_at > NOW()) ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Promotion
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
