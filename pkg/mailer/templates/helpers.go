package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/salon-connect/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithActorImage(url string) Option { return func(d *EmailData) { d.ActorImage = url } }

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		AppURL:      strings.TrimRight(cfg.AppURL, "/"),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewFollowerData builds the data of the mail telling recipient that actor
// started following them.
func NewFollowerData(cfg *config.Config, name, recipient, actorName, actorUsername string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, NewFollower, name, recipient, opts...)
	d.ActorName = actorName
	d.ActorUsername = actorUsername
	if actorUsername != "" && d.AppURL != "" {
		d.ProfileURL = d.AppURL + "/u/" + actorUsername
	}
	return ToMap(d)
}
