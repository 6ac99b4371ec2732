package store

import "context"

// CreateReview inserts or replaces the user's review for a product.
func (s *Store) CreateReview(ctx context.Context, r Review) (Review, error) {
	row := s.db().QueryRow(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, user_id) DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING product_id, user_id, rating, comment, created_at`,
		r.ProductID, r.UserID, r.Rating, r.Comment)
	var out Review
	err := row.Scan(&out.ProductID, &out.UserID, &out.Rating, &out.Comment, &out.CreatedAt)
	return out, err
}

// ListReviewsByProduct returns a product's reviews, newest first.
func (s *Store) ListReviewsByProduct(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := s.db().Query(ctx, `
		SELECT product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasReviewed reports whether the user already reviewed the product.
func (s *Store) HasReviewed(ctx context.Context, userID string, productID int64) (bool, error) {
	var exists bool
	err := s.db().QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)",
		productID, userID).Scan(&exists)
	return exists, err
}
