package domain

// Identity is an opaque reference to a person in the remote ticketing
// system: an account id, or an email-like username in self mode.
type Identity string

// Mode selects how tickets are scoped and how comments are attributed.
type Mode int

const (
	// SelfMode scopes to the caller's own identity and matches comment
	// authors by email address.
	SelfMode Mode = iota
	// RosterMode scopes to an explicit list of account ids and matches
	// comment authors by account id.
	RosterMode
)

func (m Mode) String() string {
	if m == RosterMode {
		return "roster"
	}
	return "self"
}

// Author identifies who wrote a comment. EmailAddress is nil when the
// remote service hides it.
type Author struct {
	AccountID    string  `json:"accountId"`
	EmailAddress *string `json:"emailAddress,omitempty"`
	DisplayName  string  `json:"displayName"`
}

// Comment is a single entry of a ticket's comment history.
type Comment struct {
	ID      string `json:"id"`
	Author  Author `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

// Ticket is the flattened view of a remote issue.
type Ticket struct {
	Key             string
	Status          string
	Summary         string
	StatusChangedAt string
	Comments        []Comment
	// OriginIdentity is the roster entry this ticket was fetched for. Empty
	// in self mode.
	OriginIdentity Identity
}
