package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// UpsertUser creates or refreshes the local profile for a subject. Called on
// first authenticated contact so later joins always have a row.
func (s *Store) UpsertUser(ctx context.Context, u User) (User, error) {
	row := s.db().QueryRow(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING id, email, name, role, created_at`,
		u.ID, u.Email, u.Name, u.Role)
	var out User
	err := row.Scan(&out.ID, &out.Email, &out.Name, &out.Role, &out.CreatedAt)
	return out, err
}

// GetUser fetches one user profile.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db().QueryRow(ctx,
		"SELECT id, email, name, role, created_at FROM users WHERE id = $1", id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

const addressColumns = `id, user_id, full_name, phone, area, city, state, pincode, created_at`

func scanAddress(row pgx.Row) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Area, &a.City, &a.State, &a.Pincode, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

// ListAddresses returns the user's address book, newest first.
func (s *Store) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	rows, err := s.db().Query(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAddress inserts a delivery address.
func (s *Store) CreateAddress(ctx context.Context, a Address) (Address, error) {
	row := s.db().QueryRow(ctx, `
		INSERT INTO addresses (user_id, full_name, phone, area, city, state, pincode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+addressColumns,
		a.UserID, a.FullName, a.Phone, a.Area, a.City, a.State, a.Pincode)
	return scanAddress(row)
}

// GetAddress fetches an address scoped to its owner.
func (s *Store) GetAddress(ctx context.Context, id int64, userID string) (Address, error) {
	row := s.db().QueryRow(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id = $1 AND user_id = $2", id, userID)
	return scanAddress(row)
}
