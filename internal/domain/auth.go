package domain

import "time"

// SubjectType differentiates automated callers from human operators.
type SubjectType string

const (
	SubjectTypeService  SubjectType = "SERVICE"
	SubjectTypeOperator SubjectType = "OPERATOR"
)

// Valid reports whether the subject type is known.
func (s SubjectType) Valid() bool {
	return s == SubjectTypeService || s == SubjectTypeOperator
}

// Token represents issued bearer token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
