package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// ClientsHandler manages lead intake and triage endpoints.
type ClientsHandler struct {
	clients *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clients *service.ClientService) *ClientsHandler {
	return &ClientsHandler{clients: clients}
}

// AddClient POST /clients.
func (h *ClientsHandler) AddClient(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("full_name, email required", nil)
	}

	client, err := h.clients.AddClient(c.UserContext(), actor, service.ClientDraft{
		FullName:           req.FullName,
		Email:              req.Email,
		Phone:              req.Phone,
		Company:            req.Company,
		Website:            req.Website,
		ServicesNeeded:     req.ServicesNeeded,
		ProjectDescription: req.ProjectDescription,
		CompanySummary:     req.CompanySummary,
		Source:             req.Source,
		SourceID:           req.SourceID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": client})
}

// ListClients GET /clients.
func (h *ClientsHandler) ListClients(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	clients, err := h.clients.ListClients(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clients})
}

// SetStatus POST /clients/:id/status.
func (h *ClientsHandler) SetStatus(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ClientStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status != domain.ClientStatusValid && req.Status != domain.ClientStatusSpam {
		return apperrors.NewValidationError("status must be VALID or SPAM", nil)
	}
	if err := h.clients.SetClientStatus(c.UserContext(), actor, c.Params("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": req.Status}})
}

// SetActive POST /clients/:id/active.
func (h *ClientsHandler) SetActive(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ClientActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.clients.SetClientActive(c.UserContext(), actor, c.Params("id"), req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"is_active": req.Active}})
}
