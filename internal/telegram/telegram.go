// Package telegram is the thin glue between the Telegram Bot API and
// the ledger: message routing, keyboards and receipt intake.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/config"
	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/internal/ledger"
)

// Bot holds the Telegram session and its collaborators. Everything is
// injected at construction; nothing reaches into package globals.
type Bot struct {
	api    *tgbotapi.BotAPI
	cfg    *config.Config
	ledger *ledger.Ledger
	tr     *i18n.Translator
	log    zerolog.Logger
}

// New connects to the Telegram Bot API.
func New(cfg *config.Config, led *ledger.Ledger, tr *i18n.Translator, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBot.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram session: %w", err)
	}

	b := &Bot{
		api:    api,
		cfg:    cfg,
		ledger: led,
		tr:     tr,
		log:    logger.With().Str("component", "telegram").Logger(),
	}
	b.log.Info().Str("username", api.Self.UserName).Msg("connected to Telegram")
	return b, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("update loop stopped")
			return
		case upd := <-updates:
			if upd.Message != nil {
				b.handleMessage(ctx, upd.Message)
			}
		}
	}
}

// SendMessage delivers plain text to a chat. It also serves as the
// outbox handle the reminder dispatcher is constructed with.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// reply sends text with an optional reply markup, logging failures
// instead of surfacing them; a dead chat must not break a handler.
func (b *Bot) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

// t translates key for the given user's stored locale.
func (b *Bot) t(ctx context.Context, userID int64, key string) string {
	return b.tr.T(b.ledger.Locale(ctx, userID), key)
}
