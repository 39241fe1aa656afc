package domain

import "time"

// Unit names what kind of work a warning was absorbed from.
type Unit string

const (
	UnitRosterSearch Unit = "roster_search"
	UnitTicketDetail Unit = "ticket_detail"
	UnitGroupHeader  Unit = "group_header"
	UnitReferences   Unit = "references"
)

// Warning records a failure that degraded part of a digest without
// aborting the build.
type Warning struct {
	Unit    Unit   `json:"unit"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// DigestRequest configures a single digest build.
type DigestRequest struct {
	LookbackDays  int
	Identities    []Identity
	CommentLength int
}

// Mode reports the scoping mode implied by the request.
func (r DigestRequest) Mode() Mode {
	if len(r.Identities) > 0 {
		return RosterMode
	}
	return SelfMode
}

// Digest is the rendered, sanitized output of a build.
type Digest struct {
	ID          string
	Text        string
	Mode        Mode
	TicketCount int
	Warnings    []Warning
	GeneratedAt time.Time
}
