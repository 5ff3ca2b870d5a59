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

// ProjectsHandler manages the project lifecycle endpoints.
type ProjectsHandler struct {
	projects *service.ProjectService
	views    *service.ViewService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projects *service.ProjectService, views *service.ViewService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, views: views}
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}
	project, err := h.projects.CreateProjectForClient(c.UserContext(), actor, req.ClientID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// ListProjects GET /projects. Visibility is role-scoped.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	projects, err := h.views.ProjectsFor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, dto.NewProjectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPortalProject GET /portal/project. Client view of their own project.
func (h *ProjectsHandler) GetPortalProject(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	project, err := h.views.ClientProject(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// ActivateProject POST /projects/:id/activate.
func (h *ProjectsHandler) ActivateProject(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ActivateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ManagerID) == "" {
		return apperrors.NewValidationError("manager_id required", nil)
	}
	project, err := h.projects.ActivateProject(c.UserContext(), actor, c.Params("id"), req.ManagerID, req.Earnings, service.ActivationCredentials{
		Username: req.Username,
		Secret:   req.Secret,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// DeliverProject POST /projects/:id/deliver.
func (h *ProjectsHandler) DeliverProject(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	project, err := h.projects.DeliverProject(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// AssignDeveloper POST /projects/:id/phases/:phaseId/developers.
func (h *ProjectsHandler) AssignDeveloper(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignDeveloperRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.DeveloperID) == "" {
		return apperrors.NewValidationError("developer_id required", nil)
	}
	if err := h.projects.AssignDeveloperToPhase(c.UserContext(), actor, c.Params("id"), c.Params("phaseId"), req.DeveloperID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "assigned"}})
}

// AdvancePhase POST /projects/:id/phases/:phaseId/status.
func (h *ProjectsHandler) AdvancePhase(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PhaseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	switch req.Status {
	case domain.PhaseStatusNotStarted, domain.PhaseStatusInProgress, domain.PhaseStatusCompleted:
	default:
		return apperrors.NewValidationError("status must be NOT_STARTED, IN_PROGRESS or COMPLETED", nil)
	}
	if err := h.projects.AdvancePhaseStatus(c.UserContext(), actor, c.Params("id"), c.Params("phaseId"), req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": req.Status}})
}
