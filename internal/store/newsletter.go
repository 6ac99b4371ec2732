package store

import "context"

// Subscribe adds an email to the newsletter list. Returns false when the
// email was already subscribed.
func (s *Store) Subscribe(ctx context.Context, email string) (bool, error) {
	tag, err := s.db().Exec(ctx, `
		INSERT INTO newsletter_subscribers (email) VALUES ($1)
		ON CONFLICT (email) DO NOTHING`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListSubscribers returns every newsletter recipient.
func (s *Store) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.db().Query(ctx,
		"SELECT email, subscribed_at FROM newsletter_subscribers ORDER BY subscribed_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.Email, &sub.SubscribedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
