package models

import (
	"time"
)

// Registrant is a single waiting-list signup. Rows are never updated or
// deleted; created_at defines the queue order.
type Registrant struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SpotOf returns the 1-based position of email within registrants, which must
// be ordered by creation time ascending. Returns 0 if the email is absent;
// that only happens if the row vanished between the insert and the read-back.
func SpotOf(registrants []Registrant, email string) int {
	for i, r := range registrants {
		if r.Email == email {
			return i + 1
		}
	}
	return 0
}
