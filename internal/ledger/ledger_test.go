package ledger

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/db"
)

// The ledger's invariants live in its SQL, so these tests run against a
// real database. Point TEST_DATABASE_URL at a scratch Postgres to
// enable them; they are skipped otherwise.
func testLedger(t *testing.T) *Ledger {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE payments, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return New(pool, "en", zerolog.Nop())
}

func TestRegisterTwiceFirstNameWins(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	if !l.Register(ctx, 1, "Alice") {
		t.Fatal("first Register failed")
	}
	if !l.Register(ctx, 1, "Bob") {
		t.Fatal("repeat Register must be a no-op, not a failure")
	}

	users := l.ListAll(ctx)
	if len(users) != 1 {
		t.Fatalf("got %d rows after double registration, want 1", len(users))
	}
	if users[0].FullName != "Alice" {
		t.Errorf("stored name = %q, want %q (first registration wins)", users[0].FullName, "Alice")
	}
}

func TestRegisterDefaults(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	l.Register(ctx, 1, "Alice")

	debt, ok := l.Debt(ctx, 1)
	if !ok || debt != 1.0 {
		t.Errorf("new user debt = (%v, %v), want (1.0, true)", debt, ok)
	}
	if locale := l.Locale(ctx, 1); locale != "en" {
		t.Errorf("new user locale = %q, want en", locale)
	}
}

func TestRecordPaymentClearsDebt(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "Alice")

	l.SetDebt(ctx, 1, 5.0)
	if !l.RecordPayment(ctx, 1, "receipts/1_20260509143005.jpg", "ref-1") {
		t.Fatal("RecordPayment failed")
	}
	if debt, ok := l.Debt(ctx, 1); !ok || debt != 0.0 {
		t.Errorf("debt after payment = (%v, %v), want exactly (0.0, true)", debt, ok)
	}

	payments := l.Payments(ctx, 1, 10)
	if len(payments) != 1 {
		t.Fatalf("got %d payment records, want 1", len(payments))
	}
	if payments[0].ImagePath != "receipts/1_20260509143005.jpg" || payments[0].Reference != "ref-1" {
		t.Errorf("payment row = %+v", payments[0])
	}

	// A payment at zero debt still appends a record and leaves debt at 0.
	if !l.RecordPayment(ctx, 1, "receipts/1_20260509150000.jpg", "") {
		t.Fatal("RecordPayment at zero debt failed")
	}
	if debt, _ := l.Debt(ctx, 1); debt != 0.0 {
		t.Errorf("debt after second payment = %v, want 0.0", debt)
	}
	if got := len(l.Payments(ctx, 1, 10)); got != 2 {
		t.Errorf("got %d payment records, want 2 (append-only)", got)
	}
}

func TestRecordPaymentUnknownUserRollsBack(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "Alice")
	l.SetDebt(ctx, 1, 5.0)

	// The payments insert violates the users FK, so the whole unit must
	// be abandoned: no record, no debt change anywhere.
	if l.RecordPayment(ctx, 999, "receipts/999_x.jpg", "") {
		t.Fatal("RecordPayment for unknown user must fail")
	}
	if got := len(l.Payments(ctx, 999, 10)); got != 0 {
		t.Errorf("got %d payment records after failed payment, want 0", got)
	}
	if debt, _ := l.Debt(ctx, 1); debt != 5.0 {
		t.Errorf("bystander debt = %v, want 5.0 untouched", debt)
	}
}

func TestDebtorsFilter(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "A")
	l.Register(ctx, 2, "B")
	l.Register(ctx, 3, "C")
	l.SetDebt(ctx, 1, 1.0)
	l.SetDebt(ctx, 2, 0.0)
	l.SetDebt(ctx, 3, -1.0)

	debtors := l.Debtors(ctx)
	if len(debtors) != 1 || debtors[0] != 1 {
		t.Errorf("Debtors = %v, want [1] (zero and negative excluded)", debtors)
	}
}

func TestSetDebtStoredVerbatim(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "A")

	// Negative values are accepted and stored as-is; only the debtor
	// filter keeps them out of reminders and enforcement.
	if !l.SetDebt(ctx, 1, -3.5) {
		t.Fatal("SetDebt failed")
	}
	if debt, _ := l.Debt(ctx, 1); debt != -3.5 {
		t.Errorf("debt = %v, want -3.5 verbatim", debt)
	}

	if l.SetDebt(ctx, 999, 1.0) {
		t.Error("SetDebt for unknown user must report false")
	}
}

func TestDebtReadIdempotent(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "A")
	l.SetDebt(ctx, 1, 2.5)

	first, ok1 := l.Debt(ctx, 1)
	second, ok2 := l.Debt(ctx, 1)
	if !ok1 || !ok2 || first != second {
		t.Errorf("consecutive reads = (%v,%v) and (%v,%v), want identical", first, ok1, second, ok2)
	}

	if _, ok := l.Debt(ctx, 999); ok {
		t.Error("Debt for unknown user must report absent")
	}
}

func TestLocaleRoundTrip(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "A")

	if locale := l.Locale(ctx, 999); locale != "en" {
		t.Errorf("unknown user locale = %q, want default en", locale)
	}
	if !l.SetLocale(ctx, 1, "ru") {
		t.Fatal("SetLocale failed")
	}
	if locale := l.Locale(ctx, 1); locale != "ru" {
		t.Errorf("locale = %q, want ru", locale)
	}
	if l.SetLocale(ctx, 999, "ru") {
		t.Error("SetLocale for unknown user must report false")
	}
}

func TestForNotificationIncludesEveryone(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	l.Register(ctx, 1, "A")
	l.Register(ctx, 2, "B")
	l.SetDebt(ctx, 2, 0.0)

	// Filtering on debt is the dispatcher's job, not the query's.
	users := l.ForNotification(ctx)
	if len(users) != 2 {
		t.Errorf("ForNotification returned %d rows, want 2", len(users))
	}
}
