package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Clients        *handlers.ClientsHandler
	Projects       *handlers.ProjectsHandler
	Developers     *handlers.DevelopersHandler
	Work           *handlers.WorkHandler
	Messages       *handlers.MessagesHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/session", cfg.Auth.Session)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleManager))
	users.Post("", cfg.Users.CreateUser)
	users.Get("", cfg.Users.ListUsers)
	users.Post("/:id/deactivate", cfg.Users.DeactivateUser)

	clients := app.Group("/clients", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner))
	clients.Post("", cfg.Clients.AddClient)
	clients.Get("", cfg.Clients.ListClients)
	clients.Post("/:id/status", cfg.Clients.SetStatus)
	clients.Post("/:id/active", cfg.Clients.SetActive)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	projects.Get("", cfg.Projects.ListProjects)
	projects.Post("", auth.RequireRole(domain.RoleOwner), cfg.Projects.CreateProject)
	projects.Post("/:id/activate", auth.RequireRole(domain.RoleOwner, domain.RoleManager), cfg.Projects.ActivateProject)
	projects.Post("/:id/deliver", auth.RequireRole(domain.RoleOwner, domain.RoleManager), cfg.Projects.DeliverProject)
	projects.Post("/:id/phases/:phaseId/developers", auth.RequireRole(domain.RoleOwner, domain.RoleManager), cfg.Projects.AssignDeveloper)
	projects.Post("/:id/phases/:phaseId/status", cfg.Projects.AdvancePhase)

	portal := app.Group("/portal", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleClient))
	portal.Get("/project", cfg.Projects.GetPortalProject)

	developers := app.Group("/developers", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleManager))
	developers.Post("", cfg.Developers.CreateDeveloper)
	developers.Get("", cfg.Developers.ListDevelopers)
	developers.Post("/:id/active", cfg.Developers.SetActive)
	developers.Get("/:id/projects", cfg.Developers.ListProjectIDs)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tasks.Post("", cfg.Work.CreateTask)
	tasks.Get("", cfg.Work.ListTasks)
	tasks.Post("/:id/status", cfg.Work.UpdateTaskStatus)

	progress := app.Group("/progress", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	progress.Post("", cfg.Work.RecordProgress)
	progress.Get("", cfg.Work.ListProgress)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	issues.Post("", cfg.Work.ReportIssue)
	issues.Get("", cfg.Work.ListIssues)
	issues.Post("/:id/status", cfg.Work.UpdateIssueStatus)

	messages := app.Group("/messages", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	messages.Post("", cfg.Messages.Send)
	messages.Get("", cfg.Messages.Inbox)
	messages.Post("/:id/read", cfg.Messages.MarkRead)

	audit := app.Group("/audit", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner))
	audit.Get("", cfg.Audit.List)
}
