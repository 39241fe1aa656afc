package dto

import (
	"time"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// CreateConnectionRequest payload.
type CreateConnectionRequest struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	APIToken string `json:"api_token"`
}

// ConnectionResponse never carries the API token.
type ConnectionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BaseURL   string    `json:"base_url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConnectionResponse maps a stored connection.
func NewConnectionResponse(c *domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:        c.ID,
		Title:     c.Title,
		BaseURL:   c.BaseURL,
		Username:  c.Username,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
