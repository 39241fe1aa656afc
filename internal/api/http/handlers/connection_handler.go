package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jira-digest/internal/api/dto"
	"github.com/spec-kit/jira-digest/internal/service"
	apperrors "github.com/spec-kit/jira-digest/pkg/util/errorutil"
)

// ConnectionHandler manages stored Jira connections.
type ConnectionHandler struct {
	service *service.ConnectionService
}

// NewConnectionHandler constructs handler.
func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: connectionService}
}

// Create POST /api/v1/connections.
func (h *ConnectionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	conn, err := h.service.Create(c.UserContext(), service.ConnectionInput{
		BaseURL:  req.BaseURL,
		Username: req.Username,
		APIToken: req.APIToken,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewConnectionResponse(conn)})
}

// List GET /api/v1/connections.
func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	conns, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ConnectionResponse, 0, len(conns))
	for i := range conns {
		items = append(items, dto.NewConnectionResponse(&conns[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/connections/:id.
func (h *ConnectionHandler) Get(c *fiber.Ctx) error {
	conn, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewConnectionResponse(conn)})
}

// Delete DELETE /api/v1/connections/:id.
func (h *ConnectionHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
