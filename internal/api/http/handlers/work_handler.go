package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// WorkHandler manages tasks, progress logs and issues.
type WorkHandler struct {
	work  *service.WorkService
	views *service.ViewService
}

// NewWorkHandler constructs handler.
func NewWorkHandler(work *service.WorkService, views *service.ViewService) *WorkHandler {
	return &WorkHandler{work: work, views: views}
}

// CreateTask POST /tasks.
func (h *WorkHandler) CreateTask(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" || req.DeveloperID == "" || strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("project_id, developer_id, title required", nil)
	}
	task, err := h.work.CreateTask(c.UserContext(), actor, service.TaskDraft{
		ProjectID:   req.ProjectID,
		DeveloperID: req.DeveloperID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": task})
}

// ListTasks GET /tasks. Visibility is role-scoped.
func (h *WorkHandler) ListTasks(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tasks, err := h.views.TasksFor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tasks})
}

// UpdateTaskStatus POST /tasks/:id/status.
func (h *WorkHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	if err := h.work.UpdateTaskStatus(c.UserContext(), actor, c.Params("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": req.Status}})
}

// RecordProgress POST /progress.
func (h *WorkHandler) RecordProgress(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RecordProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" || req.DeveloperID == "" || strings.TrimSpace(req.Update) == "" {
		return apperrors.NewValidationError("project_id, developer_id, short_update required", nil)
	}
	log, err := h.work.RecordProgress(c.UserContext(), actor, req.ProjectID, req.DeveloperID, req.Update, req.Hours, req.Date)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": log})
}

// ListProgress GET /progress. Visibility is role-scoped.
func (h *WorkHandler) ListProgress(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	logs, err := h.views.ProgressFor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": logs})
}

// ReportIssue POST /issues.
func (h *WorkHandler) ReportIssue(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReportIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" || strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("project_id, title required", nil)
	}
	issue, err := h.work.ReportIssue(c.UserContext(), actor, service.IssueDraft{
		ProjectID:   req.ProjectID,
		ReporterID:  actor.ID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": issue})
}

// ListIssues GET /issues. Visibility is role-scoped.
func (h *WorkHandler) ListIssues(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	issues, err := h.views.IssuesFor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issues})
}

// UpdateIssueStatus POST /issues/:id/status.
func (h *WorkHandler) UpdateIssueStatus(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.IssueStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	if err := h.work.UpdateIssueStatus(c.UserContext(), actor, c.Params("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": req.Status}})
}
