package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrSetupConfigured is returned by BootstrapAdmin when an admin
// profile already exists.
var ErrSetupConfigured = errors.New("an admin profile already exists")

// Serializes concurrent first-run setup submissions.
const setupAdvisoryLockID = 874039

// IdentityRepository defines persistence access for authentication
// identities and the transactional provisioning paths that create an
// identity together with its profile.
type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CreateWithProfile(ctx context.Context, identity *domain.Identity, profile *domain.Profile) error
	BootstrapAdmin(ctx context.Context, identity *domain.Identity, profile *domain.Profile) error
	DeleteOrphans(ctx context.Context, olderThan time.Time) (int64, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM identities WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM identities WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var identity domain.Identity
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE identities SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateWithProfile inserts the identity and its profile in a single
// transaction so a failure on either step leaves no orphaned identity.
func (r *identityRepository) CreateWithProfile(ctx context.Context, identity *domain.Identity, profile *domain.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := insertIdentity(ctx, tx, identity); err != nil {
		return err
	}
	profile.ID = identity.ID
	if err := insertProfile(ctx, tx, profile); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// BootstrapAdmin creates the first admin identity and profile. The
// admin-count check and the inserts run under a transaction-scoped
// advisory lock, so two simultaneous first-run submissions serialize
// and the second one fails with ErrSetupConfigured.
func (r *identityRepository) BootstrapAdmin(ctx context.Context, identity *domain.Identity, profile *domain.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, setupAdvisoryLockID); err != nil {
		return err
	}

	var adminCount int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE role='admin'`).Scan(&adminCount); err != nil {
		return err
	}
	if adminCount > 0 {
		return ErrSetupConfigured
	}

	if err := insertIdentity(ctx, tx, identity); err != nil {
		return err
	}
	profile.ID = identity.ID
	profile.Role = domain.RoleAdmin
	if err := insertProfile(ctx, tx, profile); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteOrphans removes identities without a profile row created
// before the cutoff. Safety net for provisioning performed outside the
// transactional path.
func (r *identityRepository) DeleteOrphans(ctx context.Context, olderThan time.Time) (int64, error) {
	const query = `
        DELETE FROM identities i
        WHERE NOT EXISTS (SELECT 1 FROM profiles p WHERE p.id = i.id)
          AND i.created_at < $1`
	cmd, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func insertIdentity(ctx context.Context, tx pgx.Tx, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return tx.QueryRow(ctx, query,
		identity.Email,
		identity.PasswordHash,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func insertProfile(ctx context.Context, tx pgx.Tx, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (id, full_name, avatar_url, role, department)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	return tx.QueryRow(ctx, query,
		profile.ID,
		profile.FullName,
		profile.AvatarURL,
		profile.Role,
		profile.Department,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}
