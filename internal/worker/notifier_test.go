package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func setup(t *testing.T) (*memory.UserRepository, *fakeSender, *Notifier) {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "a", Email: "a@example.test", Name: "Alice", Username: "alice"}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "b", Email: "b@example.test", Name: "Bob", Username: "bob"}))
	mail := &fakeSender{}
	cfg := &config.Config{AppName: "salon-connect", CompanyName: "Salon Connect", AppURL: "http://localhost:8080"}
	return users, mail, NewNotifier(users, mail, cfg, helpers.NewDiscardLogger())
}

func body(t *testing.T, ev entity.FollowEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandleFollowedSendsEmail(t *testing.T) {
	users, mail, n := setup(t)
	ctx := context.Background()
	require.NoError(t, users.AddFollow(ctx, "a", "b"))

	out := n.Handle(ctx, body(t, entity.FollowEvent{Type: entity.EventUserFollowed, ActorID: "a", TargetID: "b", OccurredAt: time.Now()}))
	assert.Equal(t, Ack, out)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "b@example.test", mail.sent[0].to)
	assert.Equal(t, "Alice started following you on salon-connect", mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].text, "Hi Bob,")
}

func TestHandleSkipsStaleFollow(t *testing.T) {
	_, mail, n := setup(t)
	out := n.Handle(context.Background(), body(t, entity.FollowEvent{Type: entity.EventUserFollowed, ActorID: "a", TargetID: "b"}))
	assert.Equal(t, Ack, out)
	assert.Empty(t, mail.sent)
}

func TestHandleOutcomes(t *testing.T) {
	users, mail, n := setup(t)
	ctx := context.Background()
	require.NoError(t, users.AddFollow(ctx, "a", "b"))

	assert.Equal(t, Discard, n.Handle(ctx, []byte("{not json")))
	assert.Equal(t, Ack, n.Handle(ctx, body(t, entity.FollowEvent{Type: entity.EventUserUnfollowed, ActorID: "a", TargetID: "b"})))
	assert.Equal(t, Ack, n.Handle(ctx, body(t, entity.FollowEvent{Type: "user.blocked", ActorID: "a", TargetID: "b"})))
	assert.Equal(t, Ack, n.Handle(ctx, body(t, entity.FollowEvent{Type: entity.EventUserFollowed, ActorID: "ghost", TargetID: "b"})))
	assert.Empty(t, mail.sent)

	mail.err = errors.New("mailgun down")
	assert.Equal(t, Retry, n.Handle(ctx, body(t, entity.FollowEvent{Type: entity.EventUserFollowed, ActorID: "a", TargetID: "b"})))
}

func TestLogSender(t *testing.T) {
	require.NoError(t, LogSender{Logger: helpers.NewDiscardLogger()}.Send(context.Background(), "x@example.test", "s", "t", "h"))
}
