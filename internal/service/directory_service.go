package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const setupConfiguredKey = "setup:configured"

// DirectoryService manages accounts: provisioning, role changes and the
// one-time initial-admin setup flow.
type DirectoryService struct {
	identities repository.IdentityRepository
	profiles   repository.ProfileRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	bcryptCost int
}

// DirectoryDependencies bundles requirements for the directory service.
type DirectoryDependencies struct {
	IdentityRepo repository.IdentityRepository
	ProfileRepo  repository.ProfileRepository
	Cache        *persistence.Redis
	Dispatcher   events.Dispatcher
	BcryptCost   int
}

// RegisterInput describes account provisioning payload.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Role       domain.Role
	Department *string
}

// NewDirectoryService builds the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		identities: deps.IdentityRepo,
		profiles:   deps.ProfileRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// RegisterUser provisions an identity and its profile in a single
// transaction; a failure on either step leaves no orphaned identity.
func (s *DirectoryService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.Profile, error) {
	identity, profile, err := s.buildAccount(ctx, input.FullName, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	profile.Role = role
	profile.Department = input.Department

	if err := s.identities.CreateWithProfile(ctx, identity, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// UpdateProfile lets a caller edit their own display identity. Role
// and department are not touched here; role changes go through
// UpdateRole.
func (s *DirectoryService) UpdateProfile(ctx context.Context, profileID, fullName string, avatarURL *string) (*domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full_name required", nil)
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": profileID})
		}
		return nil, apperrors.MapError(err)
	}
	profile.FullName = fullName
	profile.AvatarURL = avatarURL
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// UpdateRole overwrites a profile's role. There is no audit trail
// beyond the row's refreshed updated_at.
func (s *DirectoryService) UpdateRole(ctx context.Context, actor *domain.Profile, profileID string, newRole domain.Role) (*domain.Profile, error) {
	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": newRole})
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": profileID})
		}
		return nil, apperrors.MapError(err)
	}
	oldRole := profile.Role
	if err := s.profiles.UpdateRole(ctx, profileID, newRole); err != nil {
		return nil, apperrors.MapError(err)
	}
	profile.Role = newRole
	s.publish(ctx, events.Event{
		Type:  events.EventProfileRoleChanged,
		Actor: actorFor(actor),
		Payload: events.ProfileRoleChangedPayload{
			ProfileID: profileID,
			OldRole:   oldRole,
			NewRole:   newRole,
		},
	})
	return profile, nil
}

// ListProfiles returns profiles for the admin directory view.
func (s *DirectoryService) ListProfiles(ctx context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// ListStaff returns agent and admin profiles, for assignment pickers.
func (s *DirectoryService) ListStaff(ctx context.Context) ([]domain.Profile, error) {
	return s.ListProfiles(ctx, repository.ProfileFilter{
		Roles: []domain.Role{domain.RoleAgent, domain.RoleAdmin},
		Limit: 200,
	})
}

// SetupConfigured reports whether the one-time setup has completed,
// i.e. any admin profile exists. A positive answer is cached forever;
// setup never becomes available again.
func (s *DirectoryService) SetupConfigured(ctx context.Context) (bool, error) {
	if val, ok := s.cache.GetString(ctx, setupConfiguredKey); ok && val == "1" {
		return true, nil
	}
	count, err := s.profiles.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if count > 0 {
		s.cache.SetString(ctx, setupConfiguredKey, "1", 0)
		return true, nil
	}
	return false, nil
}

// SetupAdmin creates the first admin account. Concurrent first-run
// submissions serialize on a Postgres advisory lock; the loser gets a
// conflict.
func (s *DirectoryService) SetupAdmin(ctx context.Context, fullName, email, password string) (*domain.Profile, error) {
	configured, err := s.SetupConfigured(ctx)
	if err != nil {
		return nil, err
	}
	if configured {
		return nil, apperrors.NewConflict("setup is no longer available", nil)
	}

	identity, profile, err := s.buildAccount(ctx, fullName, email, password)
	if err != nil {
		return nil, err
	}
	profile.Role = domain.RoleAdmin

	if err := s.identities.BootstrapAdmin(ctx, identity, profile); err != nil {
		if errors.Is(err, repository.ErrSetupConfigured) {
			s.cache.SetString(ctx, setupConfiguredKey, "1", 0)
			return nil, apperrors.NewConflict("setup is no longer available", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.cache.SetString(ctx, setupConfiguredKey, "1", 0)
	return profile, nil
}

func (s *DirectoryService) buildAccount(ctx context.Context, fullName, email, password string) (*domain.Identity, *domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(strings.ToLower(email))
	if fullName == "" || email == "" {
		return nil, nil, apperrors.NewValidationError("full_name and email required", nil)
	}
	if len(password) < 6 {
		return nil, nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	identity := &domain.Identity{Email: email, PasswordHash: hash}
	profile := &domain.Profile{FullName: fullName, Role: domain.RoleUser}
	return identity, profile, nil
}

func (s *DirectoryService) publish(ctx context.Context, event events.Event) {
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
