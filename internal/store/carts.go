package store

import "context"

// GetCart returns the user's cart rows. Storage only holds positive
// quantities; the map semantics live in SetCartItem.
func (s *Store) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	rows, err := s.db().Query(ctx,
		"SELECT user_id, product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY product_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.UserID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetCartItem sets the absolute quantity for a product in the user's cart.
// A quantity of zero or less removes the row.
func (s *Store) SetCartItem(ctx context.Context, userID string, productID int64, quantity int) error {
	if quantity <= 0 {
		_, err := s.db().Exec(ctx,
			"DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
		return err
	}
	_, err := s.db().Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		userID, productID, quantity)
	return err
}

// ClearCart removes every row in the user's cart.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db().Exec(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}
