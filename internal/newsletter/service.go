// Package newsletter handles subscriber signup and campaign fan-out.
package newsletter

import (
	"context"
	"strings"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the newsletter service needs.
type Querier interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	ListSubscribers(ctx context.Context) ([]store.Subscriber, error)
}

// Enqueuer schedules one delivery task per recipient.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Service manages the subscriber list and campaign sends.
type Service struct {
	Q     Querier
	Queue Enqueuer
}

// Subscribe adds an email to the list. Re-subscribing is not an error.
func (s *Service) Subscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, common.Invalid("email is required", nil)
	}
	return s.Q.Subscribe(ctx, email)
}

// CampaignInput is a seller-authored newsletter.
type CampaignInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	HTML    string `json:"html" validate:"required"`
}

// Send fans a campaign out as one queue task per subscriber so a single
// failing mailbox retries alone.
func (s *Service) Send(ctx context.Context, in CampaignInput) (int, error) {
	subs, err := s.Q.ListSubscribers(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, sub := range subs {
		msg := Message{To: sub.Email, Subject: in.Subject, HTML: in.HTML}
		if err := s.Queue.Enqueue(ctx, msg); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}
