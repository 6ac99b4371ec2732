package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/craftmart/storefront/internal/store"
)

// TaskOrderCreate is the asynq task type carrying an order draft.
const TaskOrderCreate = "order:create"

// AsynqEnqueuer pushes order drafts onto the asynq queue. The task id is the
// client request id, so a retried checkout dedupes at the broker.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

// Enqueue implements Enqueuer.
func (e AsynqEnqueuer) Enqueue(ctx context.Context, draft store.OrderDraft) error {
	if e.Client == nil {
		return errors.New("order: asynq client not configured")
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("order: marshal draft: %w", err)
	}
	task := asynq.NewTask(TaskOrderCreate, payload)
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.TaskID(draft.ClientRequestID),
		asynq.MaxRetry(5),
		asynq.Retention(0),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return ErrAlreadyQueued
	}
	return err
}

// WorkerStore is the slice of the store the worker needs.
type WorkerStore interface {
	CreateOrder(ctx context.Context, draft store.OrderDraft) (store.Order, bool, error)
	ClearCart(ctx context.Context, userID string) error
}

// Worker consumes order:create tasks.
type Worker struct {
	S   WorkerStore
	Log zerolog.Logger
}

// ProcessTask persists the drafted order. The insert is keyed on the client
// request id, so redelivery is harmless. Cart clearing failures are logged
// and do not fail the task: the order is already persisted.
func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var draft store.OrderDraft
	if err := json.Unmarshal(t.Payload(), &draft); err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("order: decode draft: %v: %w", err, asynq.SkipRetry)
	}
	order, created, err := w.S.CreateOrder(ctx, draft)
	if err != nil {
		return fmt.Errorf("order: persist draft %s: %w", draft.ClientRequestID, err)
	}
	if !created {
		w.Log.Info().Str("request_id", draft.ClientRequestID).Int64("order_id", order.ID).Msg("order already persisted, skipping")
		return nil
	}
	if err := w.S.ClearCart(ctx, draft.UserID); err != nil {
		w.Log.Error().Err(err).Str("user_id", draft.UserID).Int64("order_id", order.ID).Msg("cart clear failed after order persist")
	}
	w.Log.Info().Int64("order_id", order.ID).Str("user_id", draft.UserID).Int64("total", draft.AmountSnapshot).Msg("order persisted from queue")
	return nil
}
