package domain

import "time"

// Connection is a stored set of credentials for one Jira site.
type Connection struct {
	ID          string
	UniqueID    string
	Title       string
	BaseURL     string
	Username    string
	APIToken    string
	SealedToken []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
