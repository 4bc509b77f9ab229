package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/pkg/qrcode"
)

// handlePhoto materializes a proof-of-payment photo into the receipts
// directory and records the payment. The record insert and the debt
// reset are one transaction inside the ledger, so a failure anywhere
// here leaves the debt untouched.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	fullName := msg.From.FirstName

	// Telegram sends several sizes; the last is the largest.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	path := receiptPath(b.cfg.ReceiptsDir, userID, time.Now())
	if err := b.downloadFile(ctx, fileID, path); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("failed to download receipt photo")
		b.reply(msg.Chat.ID, b.t(ctx, userID, "receipt.process_error"), nil)
		return
	}

	// Best effort: many slips carry a QR with the transfer reference.
	reference, err := qrcode.DecodeFile(path)
	if err != nil {
		b.log.Debug().Err(err).Int64("user_id", userID).Msg("no QR reference in receipt")
		reference = ""
	}

	if !b.ledger.RecordPayment(ctx, userID, path, reference) {
		b.reply(msg.Chat.ID, b.t(ctx, userID, "receipt.save_error"), nil)
		return
	}

	text := i18n.Render(b.t(ctx, userID, "receipt.received"), map[string]string{"name": fullName})
	b.reply(msg.Chat.ID, text, nil)
	b.showMainMenu(ctx, msg.Chat.ID, userID)
}

// downloadFile fetches a Telegram file to the given path.
func (b *Bot) downloadFile(ctx context.Context, fileID, path string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("error resolving file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s fetching file", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating receipt file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("error writing receipt file: %w", err)
	}
	return nil
}

// receiptPath builds the receipt filename from the user's identity and
// a second-resolution timestamp.
func receiptPath(dir string, userID int64, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%s.jpg", userID, now.Format("20060102150405")))
}
