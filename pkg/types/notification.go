package types

import (
	"time"
)

// Notification is immutable once written except for the read flag, which
// only its recipient may flip.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	Recipient string    `db:"recipient" json:"recipient"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
