package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/pkg/qrcode"
)

// handleMessage routes one inbound message. Only private chats are
// served; the bot has no business in groups.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !msg.Chat.IsPrivate() {
		return
	}
	userID := msg.From.ID

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "admin_stats":
			b.handleAdminStats(ctx, msg)
		case "update_debt":
			b.handleUpdateDebt(ctx, msg)
		case "payments":
			b.handlePayments(ctx, msg)
		case "qr":
			b.handleQR(ctx, msg)
		default:
			b.handleUnhandled(ctx, msg)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "English" || text == "Русский":
		b.handleLanguage(ctx, msg, text)
	case b.matchesButton(text, "menu.upload"):
		b.reply(msg.Chat.ID, b.t(ctx, userID, "upload.prompt"), tgbotapi.NewRemoveKeyboard(false))
	case b.matchesButton(text, "menu.stats"):
		b.handleStats(ctx, msg)
	default:
		b.handleUnhandled(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	fullName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)

	if !b.ledger.Register(ctx, userID, fullName) {
		b.log.Warn().Int64("user_id", userID).Msg("registration failed")
	}

	text := i18n.Render(b.t(ctx, userID, "greeting"), map[string]string{"name": fullName})
	b.reply(msg.Chat.ID, text, languageKeyboard())
}

func (b *Bot) handleLanguage(ctx context.Context, msg *tgbotapi.Message, label string) {
	userID := msg.From.ID
	lang := "en"
	if label == "Русский" {
		lang = "ru"
	}

	if b.ledger.SetLocale(ctx, userID, lang) {
		b.reply(msg.Chat.ID, i18n.Render(b.t(ctx, userID, "language.set"), map[string]string{"lang": label}), nil)
		b.showMainMenu(ctx, msg.Chat.ID, userID)
		b.reply(msg.Chat.ID, b.t(ctx, userID, "welcome"), nil)
	} else {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "language.error"), nil)
	}
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	debt, ok := b.ledger.Debt(ctx, userID)
	if !ok {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "stats.error"), nil)
		return
	}
	text := i18n.Render(b.t(ctx, userID, "stats.debt"), map[string]string{
		"debt": fmt.Sprintf("%.2f", debt),
	})
	b.reply(msg.Chat.ID, text, nil)
}

// handleQR sends the user a PromptPay QR for their current debt.
func (b *Bot) handleQR(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if b.cfg.Billing.PromptPayID == "" {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "qr.not_configured"), nil)
		return
	}
	debt, ok := b.ledger.Debt(ctx, userID)
	if !ok {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "stats.error"), nil)
		return
	}
	if debt <= 0 {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "qr.no_debt"), nil)
		return
	}

	file, err := qrcode.Generate(b.cfg.ReceiptsDir, b.cfg.Billing.PromptPayID, debt)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("failed to generate payment QR")
		b.reply(msg.Chat.ID, b.t(ctx, userID, "qr.error"), nil)
		return
	}
	defer qrcode.Remove(file)

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FilePath(file))
	photo.Caption = i18n.Render(b.t(ctx, userID, "qr.caption"), map[string]string{
		"debt": fmt.Sprintf("%.2f", debt),
	})
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to send payment QR")
	}
}

func (b *Bot) handleUnhandled(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	b.log.Info().Int64("user_id", userID).Str("text", msg.Text).Msg("unhandled message")
	b.reply(msg.Chat.ID, b.t(ctx, userID, "unhandled"), nil)
	b.showMainMenu(ctx, msg.Chat.ID, userID)
}
