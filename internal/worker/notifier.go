package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/domain/entity"
	repo "github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/mailer"
	mailtpl "github.com/oksasatya/salon-connect/pkg/mailer/templates"
)

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Discard         // nack without requeue
	Retry           // nack with requeue
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// LogSender logs emails instead of sending them (MAIL_SEND_ENABLED=false).
type LogSender struct {
	Logger *logrus.Logger
}

func (s LogSender) Send(_ context.Context, to, subject, _, _ string) error {
	s.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail send disabled; email skipped")
	return nil
}

// Notifier turns follow events into new-follower emails.
type Notifier struct {
	Users       repo.UserRepository
	Mail        Sender
	Cfg         *config.Config
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewNotifier(users repo.UserRepository, mail Sender, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Users: users, Mail: mail, Cfg: cfg, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle processes one queue message body.
func (n *Notifier) Handle(ctx context.Context, body []byte) Outcome {
	var ev entity.FollowEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		n.Logger.WithError(err).Warn("bad follow event")
		return Discard
	}
	if ev.Type != entity.EventUserFollowed {
		return Ack
	}

	actor, err := n.Users.GetByID(ctx, ev.ActorID)
	if err != nil {
		return n.lookupFailed(err, ev, "actor")
	}
	target, err := n.Users.GetByID(ctx, ev.TargetID)
	if err != nil {
		return n.lookupFailed(err, ev, "target")
	}
	// unfollowed again before we got here
	if !actor.Follows(target.ID) {
		return Ack
	}

	job := mailer.EmailJob{
		To:       target.Email,
		Template: mailtpl.NewFollower,
		Data: mailtpl.NewFollowerData(n.Cfg, target.Name, target.Email, actor.Name, actor.Username,
			mailtpl.WithTime(ev.OccurredAt), mailtpl.WithActorImage(actor.UserImage)),
	}
	job.EnsureRecipient()

	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
		return Discard
	}

	c, cancel := context.WithTimeout(ctx, n.SendTimeout)
	defer cancel()
	if err := n.Mail.Send(c, job.To, subject, text, html); err != nil {
		n.Logger.WithError(err).WithField("to", job.To).Warn("send failed")
		return Retry
	}
	n.Logger.WithFields(logrus.Fields{"actor_id": actor.ID, "target_id": target.ID}).Info("new follower email sent")
	return Ack
}

func (n *Notifier) lookupFailed(err error, ev entity.FollowEvent, side string) Outcome {
	if errors.Is(err, repo.ErrNotFound) {
		n.Logger.WithFields(logrus.Fields{"actor_id": ev.ActorID, "target_id": ev.TargetID}).Infof("%s no longer exists; event skipped", side)
		return Ack
	}
	n.Logger.WithError(err).Warnf("load %s failed", side)
	return Retry
}
