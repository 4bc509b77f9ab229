package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/internal/models"
)

type fakeSender struct {
	sent    []int64
	failFor map[int64]error
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.sent = append(f.sent, chatID)
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	return nil
}

type staticLocales map[int64]string

func (s staticLocales) Locale(_ context.Context, userID int64) string {
	if l, ok := s[userID]; ok {
		return l
	}
	return "en"
}

func testDispatcher(sender Sender, locales LocaleSource) *Dispatcher {
	tr := i18n.New(map[string]map[string]string{
		"en": {"reminder.debt": "Reminder: your debt is ${debt}."},
		"ru": {"reminder.debt": "Напоминание: ваш долг ${debt}."},
	}, "en", zerolog.Nop())
	return NewDispatcher(sender, locales, tr, time.Millisecond, zerolog.Nop())
}

func TestNotifySkipsNonDebtors(t *testing.T) {
	sender := &fakeSender{}
	d := testDispatcher(sender, staticLocales{})

	d.Notify(context.Background(), []models.Notifiable{
		{TelegramID: 1, FullName: "A", Debt: 1.0},
		{TelegramID: 2, FullName: "B", Debt: 0.0},
		{TelegramID: 3, FullName: "C", Debt: 5.5},
		{TelegramID: 4, FullName: "D", Debt: -1.0},
		{TelegramID: 5, FullName: "E", Debt: 0.01},
	})

	want := []int64{1, 3, 5}
	if len(sender.sent) != len(want) {
		t.Fatalf("sent to %v, want %v", sender.sent, want)
	}
	for i, id := range want {
		if sender.sent[i] != id {
			t.Errorf("send %d went to %d, want %d", i, sender.sent[i], id)
		}
	}
}

func TestNotifyContinuesAfterSendFailure(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]error{2: errors.New("blocked by user")}}
	d := testDispatcher(sender, staticLocales{})

	d.Notify(context.Background(), []models.Notifiable{
		{TelegramID: 1, Debt: 1},
		{TelegramID: 2, Debt: 1},
		{TelegramID: 3, Debt: 1},
	})

	if len(sender.sent) != 3 {
		t.Fatalf("attempted %d sends, want 3 (failure must not abort the batch)", len(sender.sent))
	}
}

func TestNotifyStopsOnCancel(t *testing.T) {
	sender := &fakeSender{}
	tr := i18n.New(map[string]map[string]string{
		"en": {"reminder.debt": "x"},
	}, "en", zerolog.Nop())
	d := NewDispatcher(sender, staticLocales{}, tr, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Notify(ctx, []models.Notifiable{
		{TelegramID: 1, Debt: 1},
		{TelegramID: 2, Debt: 1},
	})

	if len(sender.sent) != 1 {
		t.Fatalf("attempted %d sends, want 1 (cancelled between sends)", len(sender.sent))
	}
}

func TestNotifyUsesUserLocale(t *testing.T) {
	got := map[int64]string{}
	sender := &senderRecordingText{texts: got}
	d := testDispatcher(sender, staticLocales{7: "ru"})

	d.Notify(context.Background(), []models.Notifiable{
		{TelegramID: 7, Debt: 2.5},
		{TelegramID: 8, Debt: 2.5},
	})

	if got[7] != "Напоминание: ваш долг $2.50." {
		t.Errorf("ru user got %q", got[7])
	}
	if got[8] != "Reminder: your debt is $2.50." {
		t.Errorf("en user got %q", got[8])
	}
}

type senderRecordingText struct {
	texts map[int64]string
}

func (s *senderRecordingText) SendMessage(chatID int64, text string) error {
	s.texts[chatID] = text
	return nil
}
