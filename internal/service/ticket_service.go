package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates the ticket lifecycle and comment feed.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	ProfileRepo repository.ProfileRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Department  string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters. Non-staff callers are
// always scoped to their own tickets regardless of filter values.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Department *string
	AssigneeID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new ticket for the requester. Tickets always start open.
func (s *TicketService) Create(ctx context.Context, requester *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	department := strings.TrimSpace(input.Department)
	if title == "" || description == "" || department == "" {
		return nil, apperrors.NewValidationError("title, description, department required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Department:  department,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		RequesterID: requester.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(requester),
		Payload: events.TicketCreatedPayload{
			Department: ticket.Department,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the actor. Staff see the full set
// narrowed by the filter; everyone else sees only their own tickets.
func (s *TicketService) List(ctx context.Context, actor *domain.Profile, filter TicketListFilter) ([]domain.TicketWithParties, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Department: filter.Department,
		AssigneeID: filter.AssigneeID,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !actor.Role.IsStaff() {
		requesterID := actor.ID
		repoFilter.RequesterID = &requesterID
		repoFilter.AssigneeID = nil
		repoFilter.SearchTerm = nil
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket with its comment feed. Requesters must own the
// ticket; staff see any ticket. Internal comments are excluded from the
// feed for non-staff at the query layer.
func (s *TicketService) Get(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.TicketWithParties, []domain.CommentWithAuthor, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, actor.Role.IsStaff())
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// SetStatus writes the new status and appends an internal audit comment
// naming the actor. Any status may follow any other, including reopening
// a closed ticket; there is intentionally no transition table.
func (s *TicketService) SetStatus(ctx context.Context, actor *domain.Profile, ticketID string, newStatus domain.TicketStatus) (*domain.TicketWithParties, []domain.CommentWithAuthor, error) {
	if !actor.Role.IsStaff() {
		return nil, nil, apperrors.NewForbidden("staff role required")
	}
	if !newStatus.Valid() {
		return nil, nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus.Settled() {
		if ticket.ResolvedAt == nil {
			now := time.Now()
			ticket.ResolvedAt = &now
		}
	} else {
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, &ticket.Ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	audit := fmt.Sprintf("Status changed to %s by %s", newStatus, actor.FullName)
	if err := s.appendAuditComment(ctx, ticket.ID, actor.ID, audit); err != nil {
		return nil, nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})

	comments, err := s.comments.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// Assign sets or clears the assignee and appends an internal audit
// comment. A nil assigneeID removes the assignment.
func (s *TicketService) Assign(ctx context.Context, actor *domain.Profile, ticketID string, assigneeID *string) (*domain.TicketWithParties, []domain.CommentWithAuthor, error) {
	if !actor.Role.IsStaff() {
		return nil, nil, apperrors.NewForbidden("staff role required")
	}

	var assignee *domain.Profile
	if assigneeID != nil {
		profile, err := s.profiles.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": *assigneeID})
			}
			return nil, nil, apperrors.MapError(err)
		}
		if !profile.Role.IsStaff() {
			return nil, nil, apperrors.NewValidationError("assignee must be staff", map[string]any{"profile_id": profile.ID})
		}
		assignee = profile
	}

	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, &ticket.Ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	var audit string
	if assignee != nil {
		audit = fmt.Sprintf("Ticket assigned to %s by %s", assignee.FullName, actor.FullName)
	} else {
		audit = fmt.Sprintf("Assignment removed by %s", actor.FullName)
	}
	if err := s.appendAuditComment(ctx, ticket.ID, actor.ID, audit); err != nil {
		return nil, nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})

	refreshed, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return refreshed, comments, nil
}

// PostComment appends a remark to a ticket thread. Non-staff authors
// can never produce an internal comment; the flag is overridden here,
// not trusted from the client.
func (s *TicketService) PostComment(ctx context.Context, actor *domain.Profile, ticketID, content string, isInternal bool) (*domain.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if !actor.Role.IsStaff() {
		isInternal = false
	}

	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFor(actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    stringPreview(comment.Content, 120),
		},
	})

	return &domain.CommentWithAuthor{
		TicketComment: *comment,
		Author: domain.PartyRef{
			ID:        actor.ID,
			FullName:  actor.FullName,
			AvatarURL: actor.AvatarURL,
			Role:      actor.Role,
		},
	}, nil
}

func (s *TicketService) loadTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.TicketWithParties, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.IsStaff() && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) appendAuditComment(ctx context.Context, ticketID, authorID, content string) error {
	comment := &domain.TicketComment{
		TicketID:   ticketID,
		AuthorID:   authorID,
		Content:    content,
		IsInternal: true,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(profile *domain.Profile) events.Actor {
	return events.Actor{ProfileID: profile.ID, Role: profile.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
