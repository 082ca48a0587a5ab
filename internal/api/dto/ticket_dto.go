package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest payload. A null assignee_id removes the assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	Department string                `json:"department"`
	Requester  PartyResponse         `json:"requester"`
	Assignee   *PartyResponse        `json:"assignee"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its comment feed.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	ResolvedAt  *time.Time        `json:"resolved_at"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents one feed entry with author identity.
type CommentResponse struct {
	ID         string        `json:"id"`
	TicketID   string        `json:"ticket_id"`
	Content    string        `json:"content"`
	IsInternal bool          `json:"is_internal"`
	Author     PartyResponse `json:"author"`
	CreatedAt  time.Time     `json:"created_at"`
}

// FromTicket maps a joined ticket to its summary.
func FromTicket(ticket *domain.TicketWithParties) TicketSummary {
	summary := TicketSummary{
		ID:         ticket.ID,
		Title:      ticket.Title,
		Status:     ticket.Status,
		Priority:   ticket.Priority,
		Department: ticket.Department,
		Requester:  FromParty(ticket.Requester),
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
	if ticket.Assignee != nil {
		assignee := FromParty(*ticket.Assignee)
		summary.Assignee = &assignee
	}
	return summary
}

// FromTicketDetail maps a joined ticket with its comments.
func FromTicketDetail(ticket *domain.TicketWithParties, comments []domain.CommentWithAuthor) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary: FromTicket(ticket),
		Description:   ticket.Description,
		ResolvedAt:    ticket.ResolvedAt,
		Comments:      make([]CommentResponse, 0, len(comments)),
	}
	for _, comment := range comments {
		detail.Comments = append(detail.Comments, FromComment(&comment))
	}
	return detail
}

// FromComment maps a joined comment.
func FromComment(comment *domain.CommentWithAuthor) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		Author:     FromParty(comment.Author),
		CreatedAt:  comment.CreatedAt,
	}
}
