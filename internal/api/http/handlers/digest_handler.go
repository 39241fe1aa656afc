package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jira-digest/internal/api/dto"
	"github.com/spec-kit/jira-digest/internal/service"
	apperrors "github.com/spec-kit/jira-digest/pkg/util/errorutil"
)

// DigestHandler exposes digest builds.
type DigestHandler struct {
	service *service.DigestService
}

// NewDigestHandler constructs handler.
func NewDigestHandler(digestService *service.DigestService) *DigestHandler {
	return &DigestHandler{service: digestService}
}

// Build POST /api/v1/digests.
func (h *DigestHandler) Build(c *fiber.Ctx) error {
	return h.build(c, "")
}

// BuildForConnection POST /api/v1/connections/:id/digests.
func (h *DigestHandler) BuildForConnection(c *fiber.Ctx) error {
	return h.build(c, c.Params("id"))
}

func (h *DigestHandler) build(c *fiber.Ctx, connectionID string) error {
	var req dto.BuildDigestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	result, err := h.service.Build(c.UserContext(), service.BuildInput{
		LookbackDays:  req.LookbackDays,
		AccountIDs:    req.AccountIDs,
		CommentLength: req.CommentLength,
		ConnectionID:  connectionID,
		Trigger:       "api",
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDigestResponse(result)})
}
