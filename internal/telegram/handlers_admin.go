package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/internal/models"
)

func (b *Bot) handleAdminStats(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.cfg.IsAdmin(userID) {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "admin.denied"), nil)
		return
	}

	users := b.ledger.ListAll(ctx)
	if len(users) == 0 {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "admin.no_users"), nil)
		return
	}

	lines := []string{b.t(ctx, userID, "admin.stats_header")}
	for _, u := range users {
		name := u.FullName
		if name == "" {
			name = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%s (ID: %d, Lang: %s) - Debt: $%.2f",
			name, u.TelegramID, u.Language, u.Debt))
	}
	b.reply(msg.Chat.ID, strings.Join(lines, "\n"), nil)
}

func (b *Bot) handleUpdateDebt(ctx context.Context, msg *tgbotapi.Message) {
	adminID := msg.From.ID
	if !b.cfg.IsAdmin(adminID) {
		b.reply(msg.Chat.ID, b.t(ctx, adminID, "admin.denied"), nil)
		return
	}

	targetID, amount, err := parseUpdateDebtArgs(msg.CommandArguments())
	if err != nil {
		key := "admin.update_usage"
		if err == errBadNumber {
			key = "admin.update_invalid"
		}
		b.reply(msg.Chat.ID, b.t(ctx, adminID, key), nil)
		return
	}

	// Amount is stored verbatim; validating range here would change the
	// admin contract, which accepts anything.
	if !b.ledger.SetDebt(ctx, targetID, amount) {
		b.reply(msg.Chat.ID, i18n.Render(b.t(ctx, adminID, "admin.update_missing"),
			map[string]string{"uid": strconv.FormatInt(targetID, 10)}), nil)
		b.showMainMenu(ctx, msg.Chat.ID, adminID)
		return
	}

	b.reply(msg.Chat.ID, i18n.Render(b.t(ctx, adminID, "admin.update_ok"), map[string]string{
		"uid": strconv.FormatInt(targetID, 10),
		"amt": fmt.Sprintf("%.2f", amount),
	}), nil)

	// Best effort: the target may have blocked the bot.
	notice := i18n.Render(b.t(ctx, targetID, "debt.updated_by_admin"), map[string]string{
		"debt": fmt.Sprintf("%.2f", amount),
	})
	if err := b.SendMessage(targetID, notice); err != nil {
		b.log.Warn().Err(err).Int64("user_id", targetID).Msg("could not notify user about debt update")
	}
	b.showMainMenu(ctx, msg.Chat.ID, adminID)
}

// handlePayments shows an admin the recent payment records of one user,
// newest first.
func (b *Bot) handlePayments(ctx context.Context, msg *tgbotapi.Message) {
	adminID := msg.From.ID
	if !b.cfg.IsAdmin(adminID) {
		b.reply(msg.Chat.ID, b.t(ctx, adminID, "admin.denied"), nil)
		return
	}

	targetID, err := parsePaymentsArgs(msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, b.t(ctx, adminID, "admin.payments_usage"), nil)
		return
	}

	payments := b.ledger.Payments(ctx, targetID, 10)
	if len(payments) == 0 {
		b.reply(msg.Chat.ID, i18n.Render(b.t(ctx, adminID, "admin.payments_none"),
			map[string]string{"uid": strconv.FormatInt(targetID, 10)}), nil)
		return
	}

	lines := []string{i18n.Render(b.t(ctx, adminID, "admin.payments_header"),
		map[string]string{"uid": strconv.FormatInt(targetID, 10)})}
	for _, p := range payments {
		lines = append(lines, formatPaymentLine(p))
	}
	b.reply(msg.Chat.ID, strings.Join(lines, "\n"), nil)
}

var errBadNumber = fmt.Errorf("user ID and amount must be numbers")

// parseUpdateDebtArgs parses "<user_telegram_id> <new_debt_amount>".
func parseUpdateDebtArgs(args string) (int64, float64, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(parts))
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, errBadNumber
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, errBadNumber
	}
	return targetID, amount, nil
}

// parsePaymentsArgs parses "<user_telegram_id>".
func parsePaymentsArgs(args string) (int64, error) {
	parts := strings.Fields(args)
	if len(parts) != 1 {
		return 0, fmt.Errorf("expected 1 argument, got %d", len(parts))
	}
	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, errBadNumber
	}
	return targetID, nil
}

// formatPaymentLine renders one payment record for the admin view.
func formatPaymentLine(p models.Payment) string {
	line := fmt.Sprintf("%s  %s", p.CreatedAt.Format("2006-01-02 15:04"), filepath.Base(p.ImagePath))
	if p.Reference != "" {
		line += fmt.Sprintf("  [%s]", p.Reference)
	}
	return line
}
