package domain

import "time"

// UserRecord is an authenticated account row.
type UserRecord struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
