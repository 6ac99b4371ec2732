package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/craftmart/storefront/internal/common"
)

// TaskNewsletterSend is the asynq task type carrying one newsletter delivery.
const TaskNewsletterSend = "newsletter:send"

// Message is a single delivery, one task per recipient.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// AsynqEnqueuer pushes newsletter deliveries onto the asynq queue.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

// Enqueue implements Enqueuer.
func (e AsynqEnqueuer) Enqueue(ctx context.Context, msg Message) error {
	if e.Client == nil {
		return errors.New("newsletter: asynq client not configured")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("newsletter: marshal message: %w", err)
	}
	_, err = e.Client.EnqueueContext(ctx, asynq.NewTask(TaskNewsletterSend, payload), asynq.MaxRetry(3))
	return err
}

// Worker consumes newsletter:send tasks and delivers the email.
type Worker struct {
	Email common.EmailSender
	Log   zerolog.Logger
}

// ProcessTask delivers one newsletter email.
func (w *Worker) ProcessTask(_ context.Context, t *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("newsletter: decode message: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.Email.Send(msg.To, msg.Subject, msg.HTML); err != nil {
		return fmt.Errorf("newsletter: deliver to %s: %w", msg.To, err)
	}
	w.Log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("newsletter delivered")
	return nil
}
