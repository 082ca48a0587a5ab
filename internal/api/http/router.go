package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	AdminUsers     *handlers.AdminUsersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/setup/status", cfg.Auth.SetupStatus)
	authGroup.Post("/setup", cfg.Auth.Setup)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Auth.ChangePassword)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireRole())
	me.Get("/", cfg.Me.Me)
	me.Patch("/", cfg.Me.UpdateProfile)
	me.Get("/navigation", cfg.Me.Navigation)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/assignee", cfg.StaffTickets.UpdateAssignee)
	staff.Get("/agents", cfg.StaffTickets.ListStaff)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle)
	admin.Get("/users", auth.RequireRole(domain.RoleAdmin), cfg.AdminUsers.ListUsers)
	admin.Post("/users", auth.RequireRole(domain.RoleAdmin), cfg.AdminUsers.RegisterUser)
	admin.Patch("/users/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.AdminUsers.UpdateRole)
	admin.Get("/reports/overview", auth.RequireStaff(), cfg.Reports.Overview)
}
