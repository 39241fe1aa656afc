package domain

// User is the display record for an identity.
type User struct {
	AccountID    string
	DisplayName  string
	EmailAddress string
}
