package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// OrderDraft carries everything needed to persist a new order.
type OrderDraft struct {
	UserID          string
	AddressID       int64
	Items           []OrderItem
	PromoCode       *string
	DiscountAmount  int64
	AmountSnapshot  int64
	ClientRequestID string
}

const orderColumns = `id, user_id, address_id, promo_code, discount_amount, amount_snapshot, status, client_request_id, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.PromoCode, &o.DiscountAmount,
		&o.AmountSnapshot, &o.Status, &o.ClientRequestID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// CreateOrder persists an order and its items in one transaction. The insert
// is keyed on client_request_id, so a retried creation returns the order that
// already exists with created=false instead of writing a second one.
func (s *Store) CreateOrder(ctx context.Context, draft OrderDraft) (Order, bool, error) {
	if len(draft.Items) == 0 {
		return Order{}, false, errors.New("store: order draft has no items")
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Order{}, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, address_id, promo_code, discount_amount, amount_snapshot, status, client_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_request_id) DO NOTHING
		RETURNING `+orderColumns,
		draft.UserID, draft.AddressID, draft.PromoCode, draft.DiscountAmount,
		draft.AmountSnapshot, StatusPlaced, draft.ClientRequestID)
	order, err := scanOrder(row)
	if errors.Is(err, ErrNotFound) {
		// Conflict: this request id was already persisted.
		existing, err := s.GetOrderByClientRequestID(ctx, draft.ClientRequestID)
		if err != nil {
			return Order{}, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	for _, it := range draft.Items {
		if _, err := tx.Exec(ctx,
			"INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)",
			order.ID, it.ProductID, it.Quantity); err != nil {
			return Order{}, false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, false, err
	}
	order.Items = draft.Items
	return order, true, nil
}

// GetOrderByClientRequestID fetches an order by its idempotency key.
func (s *Store) GetOrderByClientRequestID(ctx context.Context, requestID string) (Order, error) {
	row := s.db().QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE client_request_id = $1", requestID)
	order, err := scanOrder(row)
	if err != nil {
		return Order{}, err
	}
	if err := s.attachItems(ctx, []*Order{&order}); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ListOrdersByUser returns the user's orders with items, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.listOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
}

// ListAllOrders returns a page of every order, newest first.
func (s *Store) ListAllOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.listOrders(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2", limit, offset)
}

func (s *Store) listOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.db().Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*Order, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := s.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = nil
	}
	rows, err := s.db().Query(ctx,
		"SELECT order_id, product_id, quantity FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, product_id", ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var it OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity); err != nil {
			return err
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus sets the status of one order. The caller validates enum
// membership; transitions are intentionally unguarded.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := s.db().Exec(ctx, "UPDATE orders SET status = $2 WHERE id = $1", orderID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasDeliveredProduct reports whether the user has a delivered order
// containing the product. Used to gate reviews.
func (s *Store) HasDeliveredProduct(ctx context.Context, userID string, productID int64) (bool, error) {
	var exists bool
	err := s.db().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = $3
		)`, userID, productID, StatusDelivered).Scan(&exists)
	return exists, err
}

// SalesByProductSince aggregates units sold per product since the cutoff,
// excluding cancelled orders.
func (s *Store) SalesByProductSince(ctx context.Context, since time.Time) ([]ProductSales, error) {
	rows, err := s.db().Query(ctx, `
		SELECT oi.product_id, p.name, p.category, COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1 AND o.status <> $2
		GROUP BY oi.product_id, p.name, p.category
		ORDER BY 4 DESC`, since, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.Category, &ps.Units); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
