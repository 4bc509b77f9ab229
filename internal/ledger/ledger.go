// Package ledger implements the debt-tracking operations on top of the
// users and payments tables. Store errors never escape to callers as
// errors: every operation degrades to a boolean or absent result and
// logs the cause, so the message-handling layer stays simple.
package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/models"
)

// Ledger provides debt and payment operations over the shared pool.
type Ledger struct {
	pool          *pgxpool.Pool
	defaultLocale string
	log           zerolog.Logger
}

// New creates a Ledger.
func New(pool *pgxpool.Pool, defaultLocale string, logger zerolog.Logger) *Ledger {
	return &Ledger{
		pool:          pool,
		defaultLocale: defaultLocale,
		log:           logger.With().Str("component", "ledger").Logger(),
	}
}

// Register inserts the user if they are not known yet. Re-registration is
// a no-op, so the first full name seen for a Telegram ID sticks.
func (l *Ledger) Register(ctx context.Context, userID int64, fullName string) bool {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO users (telegram_id, full_name) VALUES ($1, $2)
		 ON CONFLICT (telegram_id) DO NOTHING`,
		userID, fullName)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to register user")
		return false
	}
	return true
}

// Locale returns the user's stored language, or the default locale when
// the user is unknown or the lookup fails.
func (l *Ledger) Locale(ctx context.Context, userID int64) string {
	var lang string
	err := l.pool.QueryRow(ctx,
		`SELECT language FROM users WHERE telegram_id = $1`, userID).Scan(&lang)
	if err != nil {
		l.log.Debug().Err(err).Int64("user_id", userID).Msg("locale lookup failed, using default")
		return l.defaultLocale
	}
	if lang == "" {
		return l.defaultLocale
	}
	return lang
}

// SetLocale updates the user's language preference.
func (l *Ledger) SetLocale(ctx context.Context, userID int64, locale string) bool {
	tag, err := l.pool.Exec(ctx,
		`UPDATE users SET language = $1 WHERE telegram_id = $2`, locale, userID)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Str("locale", locale).Msg("failed to set locale")
		return false
	}
	return tag.RowsAffected() > 0
}

// Debt returns the user's current debt. The second result is false when
// there is no such user.
func (l *Ledger) Debt(ctx context.Context, userID int64) (float64, bool) {
	var debt float64
	err := l.pool.QueryRow(ctx,
		`SELECT debt FROM users WHERE telegram_id = $1`, userID).Scan(&debt)
	if err != nil {
		return 0, false
	}
	return debt, true
}

// SetDebt stores the given amount verbatim. The amount is deliberately
// not validated: admins may set any value, including negative ones, and
// the debtor filter simply never picks those up.
func (l *Ledger) SetDebt(ctx context.Context, userID int64, amount float64) bool {
	tag, err := l.pool.Exec(ctx,
		`UPDATE users SET debt = $1 WHERE telegram_id = $2`, amount, userID)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Float64("amount", amount).Msg("failed to set debt")
		return false
	}
	return tag.RowsAffected() > 0
}

// RecordPayment appends a payment row and resets the user's debt to zero
// in one transaction. If either half fails the whole operation rolls
// back, so debt is never cleared without a record and vice versa.
func (l *Ledger) RecordPayment(ctx context.Context, userID int64, imagePath, reference string) bool {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to begin payment transaction")
		return false
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO payments (user_id, image_path, reference, created_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, imagePath, reference, time.Now())
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to insert payment record")
		return false
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET debt = 0.0 WHERE telegram_id = $1`, userID)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to reset debt")
		return false
	}

	if err := tx.Commit(ctx); err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to commit payment transaction")
		return false
	}
	return true
}

// ListAll returns every user's stats. Row order follows whatever the
// database gives back and is not part of the contract.
func (l *Ledger) ListAll(ctx context.Context) []models.User {
	rows, err := l.pool.Query(ctx,
		`SELECT telegram_id, COALESCE(full_name, ''), debt, language FROM users`)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to list users")
		return nil
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.TelegramID, &u.FullName, &u.Debt, &u.Language); err != nil {
			l.log.Error().Err(err).Msg("failed to scan user row")
			return nil
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		l.log.Error().Err(err).Msg("failed to iterate user rows")
		return nil
	}
	return users
}

// ForNotification returns every user's (id, name, debt) triple for the
// reminder dispatcher. Filtering on debt is the dispatcher's job.
func (l *Ledger) ForNotification(ctx context.Context) []models.Notifiable {
	rows, err := l.pool.Query(ctx,
		`SELECT telegram_id, COALESCE(full_name, ''), debt FROM users`)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to fetch users for notification")
		return nil
	}
	defer rows.Close()

	var users []models.Notifiable
	for rows.Next() {
		var n models.Notifiable
		if err := rows.Scan(&n.TelegramID, &n.FullName, &n.Debt); err != nil {
			l.log.Error().Err(err).Msg("failed to scan notification row")
			return nil
		}
		users = append(users, n)
	}
	if err := rows.Err(); err != nil {
		l.log.Error().Err(err).Msg("failed to iterate notification rows")
		return nil
	}
	return users
}

// Payments returns the user's most recent payment records, newest
// first, up to the given limit.
func (l *Ledger) Payments(ctx context.Context, userID int64, limit int) []models.Payment {
	rows, err := l.pool.Query(ctx,
		`SELECT id, user_id, image_path, COALESCE(reference, ''), created_at
		 FROM payments WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		l.log.Error().Err(err).Int64("user_id", userID).Msg("failed to fetch payments")
		return nil
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.ImagePath, &p.Reference, &p.CreatedAt); err != nil {
			l.log.Error().Err(err).Msg("failed to scan payment row")
			return nil
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		l.log.Error().Err(err).Msg("failed to iterate payment rows")
		return nil
	}
	return payments
}

// Debtors returns the Telegram IDs of users with debt strictly greater
// than zero.
func (l *Ledger) Debtors(ctx context.Context) []int64 {
	rows, err := l.pool.Query(ctx,
		`SELECT telegram_id FROM users WHERE debt > 0`)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to fetch debtor IDs")
		return nil
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			l.log.Error().Err(err).Msg("failed to scan debtor row")
			return nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		l.log.Error().Err(err).Msg("failed to iterate debtor rows")
		return nil
	}
	return ids
}

// Counts returns the number of users and the number of debtors, for the
// status endpoint.
func (l *Ledger) Counts(ctx context.Context) (users, debtors int, err error) {
	err = l.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE debt > 0) FROM users`).Scan(&users, &debtors)
	return users, debtors, err
}
