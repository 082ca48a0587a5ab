package domain

import "time"

// TicketComment is a remark on a ticket thread. Comments are immutable
// once created. Internal comments are visible to staff only; the
// restriction is enforced at the query layer, not at render time.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}

// CommentWithAuthor is a comment joined with its author's display
// identity and role.
type CommentWithAuthor struct {
	TicketComment
	Author PartyRef
}
