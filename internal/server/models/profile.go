package models

import "time"

// Profile holds extended personal data keyed by the provider subject
// identifier. A row is created lazily, with empty personal fields, the first
// time a subject is seen during reconciliation.
type Profile struct {
	ID        int64     `db:"id" json:"-"`
	Sub       string    `db:"sub" json:"sub"`
	FirstName *string   `db:"first_name" json:"first_name"`
	LastName  *string   `db:"last_name" json:"last_name"`
	Number    *string   `db:"number" json:"number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
