package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// languageKeyboard offers the language choice. Button labels are the
// language names themselves, so they are not translated.
func languageKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Русский"),
			tgbotapi.NewKeyboardButton("English"),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

// mainMenuKeyboard builds the Upload / Stats menu in the user's locale.
func (b *Bot) mainMenuKeyboard(ctx context.Context, userID int64) tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.t(ctx, userID, "menu.upload")),
			tgbotapi.NewKeyboardButton(b.t(ctx, userID, "menu.stats")),
		),
	)
}

// showMainMenu re-attaches the main menu keyboard with a short prompt.
func (b *Bot) showMainMenu(ctx context.Context, chatID, userID int64) {
	b.reply(chatID, b.t(ctx, userID, "menu.prompt"), b.mainMenuKeyboard(ctx, userID))
}

// matchesButton reports whether text equals the key's label in any
// loaded locale. Button presses arrive as plain text, and the user may
// press a button rendered before they switched language.
func (b *Bot) matchesButton(text, key string) bool {
	for _, locale := range b.tr.Locales() {
		if b.tr.T(locale, key) == text {
			return true
		}
	}
	return false
}
