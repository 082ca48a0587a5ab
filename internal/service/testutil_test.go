package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// memStore backs the in-memory repository fakes used across the
// service tests.
type memStore struct {
	identities map[string]*domain.Identity
	profiles   map[string]*domain.Profile
	tickets    map[string]*domain.Ticket
	comments   []domain.TicketComment
	seq        int
}

func newMemStore() *memStore {
	return &memStore{
		identities: make(map[string]*domain.Identity),
		profiles:   make(map[string]*domain.Profile),
		tickets:    make(map[string]*domain.Ticket),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addProfile(fullName string, role domain.Role) *domain.Profile {
	profile := &domain.Profile{
		ID:        s.nextID("profile"),
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.profiles[profile.ID] = profile
	return profile
}

func (s *memStore) party(id string) domain.PartyRef {
	profile := s.profiles[id]
	return domain.PartyRef{
		ID:        profile.ID,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		Role:      profile.Role,
	}
}

type memTicketRepo struct {
	store *memStore
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.store.nextID("ticket")
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.store.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.store.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.TicketWithParties, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.join(ticket), nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.TicketWithParties, error) {
	var result []domain.TicketWithParties
	for _, ticket := range r.store.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if filter.Department != nil && ticket.Department != *filter.Department {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		result = append(result, *r.join(ticket))
	}
	return result, nil
}

func (r *memTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.store.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *memTicketRepo) join(ticket *domain.Ticket) *domain.TicketWithParties {
	joined := &domain.TicketWithParties{
		Ticket:    *ticket,
		Requester: r.store.party(ticket.RequesterID),
	}
	if ticket.AssigneeID != nil {
		party := r.store.party(*ticket.AssigneeID)
		joined.Assignee = &party
	}
	return joined
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type memCommentRepo struct {
	store *memStore
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = r.store.nextID("comment")
	comment.CreatedAt = time.Now()
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.CommentWithAuthor, error) {
	var result []domain.CommentWithAuthor
	for _, comment := range r.store.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		result = append(result, domain.CommentWithAuthor{
			TicketComment: comment,
			Author:        r.store.party(comment.AuthorID),
		})
	}
	return result, nil
}

type memProfileRepo struct {
	store *memStore
}

func (r *memProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := r.store.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (r *memProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	if _, ok := r.store.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *profile
	clone.UpdatedAt = time.Now()
	r.store.profiles[profile.ID] = &clone
	return nil
}

func (r *memProfileRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	profile, ok := r.store.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Role = role
	profile.UpdatedAt = time.Now()
	return nil
}

func (r *memProfileRepo) List(_ context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	var result []domain.Profile
	for _, profile := range r.store.profiles {
		if len(filter.Roles) > 0 && !containsRole(filter.Roles, profile.Role) {
			continue
		}
		result = append(result, *profile)
	}
	return result, nil
}

func (r *memProfileRepo) CountByRole(_ context.Context, role domain.Role) (int, error) {
	count := 0
	for _, profile := range r.store.profiles {
		if profile.Role == role {
			count++
		}
	}
	return count, nil
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

type memIdentityRepo struct {
	store *memStore
}

func (r *memIdentityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	identity, ok := r.store.identities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *identity
	return &clone, nil
}

func (r *memIdentityRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, identity := range r.store.identities {
		if identity.Email == email {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memIdentityRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	identity, ok := r.store.identities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	identity.PasswordHash = passwordHash
	identity.UpdatedAt = time.Now()
	return nil
}

func (r *memIdentityRepo) CreateWithProfile(_ context.Context, identity *domain.Identity, profile *domain.Profile) error {
	identity.ID = r.store.nextID("identity")
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	profile.ID = identity.ID
	profile.CreatedAt = identity.CreatedAt
	profile.UpdatedAt = identity.CreatedAt

	identityClone := *identity
	profileClone := *profile
	r.store.identities[identity.ID] = &identityClone
	r.store.profiles[profile.ID] = &profileClone
	return nil
}

func (r *memIdentityRepo) BootstrapAdmin(ctx context.Context, identity *domain.Identity, profile *domain.Profile) error {
	for _, existing := range r.store.profiles {
		if existing.Role == domain.RoleAdmin {
			return repository.ErrSetupConfigured
		}
	}
	profile.Role = domain.RoleAdmin
	return r.CreateWithProfile(ctx, identity, profile)
}

func (r *memIdentityRepo) DeleteOrphans(_ context.Context, olderThan time.Time) (int64, error) {
	var removed int64
	for id, identity := range r.store.identities {
		if _, hasProfile := r.store.profiles[id]; hasProfile {
			continue
		}
		if identity.CreatedAt.Before(olderThan) {
			delete(r.store.identities, id)
			removed++
		}
	}
	return removed, nil
}

func newTicketService(store *memStore) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:  &memTicketRepo{store: store},
		CommentRepo: &memCommentRepo{store: store},
		ProfileRepo: &memProfileRepo{store: store},
	})
}

func newDirectoryService(store *memStore) *DirectoryService {
	return NewDirectoryService(DirectoryDependencies{
		IdentityRepo: &memIdentityRepo{store: store},
		ProfileRepo:  &memProfileRepo{store: store},
		BcryptCost:   4,
	})
}
