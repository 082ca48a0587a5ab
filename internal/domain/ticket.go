package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether the status is one of the known values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Settled reports whether the status counts as a resolution for the
// resolution-time report.
func (s TicketStatus) Settled() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether the priority is one of the known values.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// SuggestedDepartments is the fixed set offered at ticket creation.
// Department remains a free-text label; any string becomes a report bucket.
var SuggestedDepartments = []string{"TI", "Financeiro", "RH", "Comercial", "Suporte"}

// Ticket is the aggregate for support requests. Tickets are never
// hard-deleted.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Department  string
	RequesterID string
	AssigneeID  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PartyRef carries the display identity of a profile referenced by a
// ticket or comment, so callers render without a second round trip.
type PartyRef struct {
	ID        string
	FullName  string
	AvatarURL *string
	Role      Role
}

// TicketWithParties is a ticket joined with requester and assignee
// display identity.
type TicketWithParties struct {
	Ticket
	Requester PartyRef
	Assignee  *PartyRef
}
