package models

import "time"

// User is a member of the shared subscription, keyed by their Telegram ID.
type User struct {
	ID         int
	TelegramID int64
	FullName   string
	Language   string
	Debt       float64
	Role       string
	CreatedAt  time.Time
}

// Payment is a proof-of-payment submission. Rows are append-only; a
// successful insert always comes paired with the user's debt being reset.
type Payment struct {
	ID        int
	UserID    int64
	ImagePath string
	// Reference is the QR payload decoded from the receipt image, if any.
	Reference string
	CreatedAt time.Time
}

// Notifiable is the slice of user data the reminder dispatcher works on.
type Notifiable struct {
	TelegramID int64
	FullName   string
	Debt       float64
}
