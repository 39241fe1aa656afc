package dto

import (
	"time"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// BuildDigestRequest payload. Omitted fields take the configured defaults.
type BuildDigestRequest struct {
	LookbackDays  *int     `json:"lookback_days"`
	AccountIDs    []string `json:"account_ids"`
	CommentLength *int     `json:"comment_length"`
}

// WarningResponse is one degraded unit of a build.
type WarningResponse struct {
	Unit    domain.Unit `json:"unit"`
	Key     string      `json:"key,omitempty"`
	Message string      `json:"message"`
}

// DigestResponse is the result of a build.
type DigestResponse struct {
	ID          string            `json:"id"`
	Digest      string            `json:"digest"`
	Mode        string            `json:"mode"`
	TicketCount int               `json:"ticket_count"`
	Warnings    []WarningResponse `json:"warnings"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// NewDigestResponse maps a built digest.
func NewDigestResponse(d *domain.Digest) DigestResponse {
	warnings := make([]WarningResponse, 0, len(d.Warnings))
	for _, w := range d.Warnings {
		warnings = append(warnings, WarningResponse{Unit: w.Unit, Key: w.Key, Message: w.Message})
	}
	return DigestResponse{
		ID:          d.ID,
		Digest:      d.Text,
		Mode:        d.Mode.String(),
		TicketCount: d.TicketCount,
		Warnings:    warnings,
		GeneratedAt: d.GeneratedAt,
	}
}
