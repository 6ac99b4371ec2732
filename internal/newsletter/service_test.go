package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

type fakeNewsletterStore struct {
	subs []string
}

func (f *fakeNewsletterStore) Subscribe(_ context.Context, email string) (bool, error) {
	for _, s := range f.subs {
		if s == email {
			return false, nil
		}
	}
	f.subs = append(f.subs, email)
	return true, nil
}

func (f *fakeNewsletterStore) ListSubscribers(_ context.Context) ([]store.Subscriber, error) {
	out := make([]store.Subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, store.Subscriber{Email: s})
	}
	return out, nil
}

type fakeNewsletterQueue struct {
	msgs []Message
}

func (f *fakeNewsletterQueue) Enqueue(_ context.Context, msg Message) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

func TestSubscribeNormalizesAndDedupes(t *testing.T) {
	fs := &fakeNewsletterStore{}
	svc := &Service{Q: fs, Queue: &fakeNewsletterQueue{}}
	ctx := context.Background()

	added, err := svc.Subscribe(ctx, "  Asha@Example.COM ")
	require.NoError(t, err)
	require.True(t, added)

	added, err = svc.Subscribe(ctx, "asha@example.com")
	require.NoError(t, err)
	require.False(t, added, "re-subscribing is not an error")
	require.Equal(t, []string{"asha@example.com"}, fs.subs)
}

func TestSubscribeRejectsEmpty(t *testing.T) {
	svc := &Service{Q: &fakeNewsletterStore{}}
	_, err := svc.Subscribe(context.Background(), "   ")
	require.Error(t, err)
}

func TestSendFansOutPerSubscriber(t *testing.T) {
	fs := &fakeNewsletterStore{subs: []string{"a@example.com", "b@example.com"}}
	q := &fakeNewsletterQueue{}
	svc := &Service{Q: fs, Queue: q}

	queued, err := svc.Send(context.Background(), CampaignInput{Subject: "New arrivals", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Equal(t, 2, queued)
	require.Len(t, q.msgs, 2)
	require.Equal(t, "a@example.com", q.msgs[0].To)
	require.Equal(t, "New arrivals", q.msgs[1].Subject)
}

func TestWorkerDeliversViaEmailSender(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	w := &Worker{Email: outbox, Log: zerolog.Nop()}

	payload, err := json.Marshal(Message{To: "a@example.com", Subject: "hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.NoError(t, w.ProcessTask(context.Background(), asynq.NewTask(TaskNewsletterSend, payload)))
	require.Len(t, outbox.Outbox, 1)
	require.Equal(t, "a@example.com", outbox.Outbox[0].To)
}

func TestWorkerSkipsMalformedPayload(t *testing.T) {
	w := &Worker{Email: common.NopEmailSender{}, Log: zerolog.Nop()}
	err := w.ProcessTask(context.Background(), asynq.NewTask(TaskNewsletterSend, []byte("{not json")))
	require.Error(t, err)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}
