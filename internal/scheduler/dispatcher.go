package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/internal/models"
)

// DefaultSendDelay spaces consecutive sends to stay under the Telegram
// per-bot rate limit. It is deliberate throttling, not latency.
const DefaultSendDelay = 200 * time.Millisecond

// Sender delivers a text message to a user's chat. The Telegram bot
// satisfies this; tests use a recording fake.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// LocaleSource resolves a user's preferred locale.
type LocaleSource interface {
	Locale(ctx context.Context, userID int64) string
}

// Dispatcher sends localized debt reminders. Delivery is best effort:
// a failed send is logged and the rest of the batch still goes out.
type Dispatcher struct {
	sender  Sender
	locales LocaleSource
	tr      *i18n.Translator
	delay   time.Duration
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher. A non-positive delay falls back to
// DefaultSendDelay.
func NewDispatcher(sender Sender, locales LocaleSource, tr *i18n.Translator, delay time.Duration, logger zerolog.Logger) *Dispatcher {
	if delay <= 0 {
		delay = DefaultSendDelay
	}
	return &Dispatcher{
		sender:  sender,
		locales: locales,
		tr:      tr,
		delay:   delay,
		log:     logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Notify sends a reminder to every entry with debt > 0 and skips the
// rest. It returns once every send has been attempted.
func (d *Dispatcher) Notify(ctx context.Context, users []models.Notifiable) {
	if len(users) == 0 {
		d.log.Info().Msg("no users to notify")
		return
	}

	for _, u := range users {
		if u.Debt > 0 {
			locale := d.locales.Locale(ctx, u.TelegramID)
			text := i18n.Render(d.tr.T(locale, "reminder.debt"), map[string]string{
				"debt": fmt.Sprintf("%.2f", u.Debt),
			})
			if err := d.sender.SendMessage(u.TelegramID, text); err != nil {
				d.log.Warn().Err(err).Int64("user_id", u.TelegramID).Str("name", u.FullName).
					Msg("failed to send reminder")
			}
		}

		select {
		case <-ctx.Done():
			d.log.Info().Msg("notification run cancelled")
			return
		case <-time.After(d.delay):
		}
	}
	d.log.Info().Msg("finished notification run")
}
