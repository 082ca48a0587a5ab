package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// StaffTicketsHandler manages triage endpoints for agents and admins.
type StaffTicketsHandler struct {
	tickets   *service.TicketService
	directory *service.DirectoryService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, directory *service.DirectoryService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, directory: directory}
}

// ListTickets GET /staff/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.List(c.Context(), principal.Profile, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, comments, err := h.tickets.SetStatus(c.Context(), principal.Profile, c.Params("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketDetail(ticket, comments)})
}

// UpdateAssignee PATCH /staff/tickets/:id/assignee.
func (h *StaffTicketsHandler) UpdateAssignee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, comments, err := h.tickets.Assign(c.Context(), principal.Profile, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketDetail(ticket, comments)})
}

// ListStaff GET /staff/agents, for assignment pickers.
func (h *StaffTicketsHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := h.directory.ListStaff(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(staff))
	for i := range staff {
		items = append(items, dto.FromProfile(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
