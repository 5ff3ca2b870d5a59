package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// DevelopersHandler manages the developer roster endpoints.
type DevelopersHandler struct {
	developers *service.DeveloperService
	views      *service.ViewService
}

// NewDevelopersHandler constructs handler.
func NewDevelopersHandler(developers *service.DeveloperService, views *service.ViewService) *DevelopersHandler {
	return &DevelopersHandler{developers: developers, views: views}
}

// CreateDeveloper POST /developers.
func (h *DevelopersHandler) CreateDeveloper(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateDeveloperRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Username) == "" || req.Secret == "" {
		return apperrors.NewValidationError("name, username, password required", nil)
	}
	dev, err := h.developers.CreateDeveloper(c.UserContext(), actor, service.DeveloperDraft{
		Name:           req.Name,
		Username:       req.Username,
		Secret:         req.Secret,
		Specialization: req.Specialization,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dev})
}

// ListDevelopers GET /developers.
func (h *DevelopersHandler) ListDevelopers(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	devs, err := h.developers.ListDevelopers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": devs})
}

// SetActive POST /developers/:id/active.
func (h *DevelopersHandler) SetActive(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DeveloperActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.developers.SetDeveloperActive(c.UserContext(), actor, c.Params("id"), req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"is_active": req.Active}})
}

// ListProjectIDs GET /developers/:id/projects. Recomputed from phase
// assignments rather than the roster mirror.
func (h *DevelopersHandler) ListProjectIDs(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ids, err := h.views.DeveloperProjectIDs(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ids})
}
