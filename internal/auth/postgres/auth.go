package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// Repository reads identities, memberships and roles for the request
// pipeline. Queries are written with '?' and rebound for the driver.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const identityColumns = `id, email, name, password_hash, is_active, company_id, role_id`

func (r *Repository) GetIdentityByID(ctx context.Context, id int64) (*auth.IdentityRecord, error) {
	return r.getIdentity(ctx, `SELECT `+identityColumns+` FROM users WHERE id = ?`, id)
}

func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*auth.IdentityRecord, error) {
	return r.getIdentity(ctx, `SELECT `+identityColumns+` FROM users WHERE email = ?`, email)
}

func (r *Repository) getIdentity(ctx context.Context, query string, arg interface{}) (*auth.IdentityRecord, error) {
	var rec auth.IdentityRecord
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) CreateIdentity(ctx context.Context, rec *auth.IdentityRecord) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO users (email, name, password_hash, is_active, company_id, role_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		rec.Email, rec.Name, rec.PasswordHash, rec.IsActive, rec.CompanyID, rec.RoleID, now, now,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrEmailExists
		}
		return internal.NewInternalError("failed to create identity", err)
	}
	return nil
}

// FindActiveMembership only matches an active membership in an active company.
func (r *Repository) FindActiveMembership(ctx context.Context, userID, companyID int64) (*auth.MembershipRecord, error) {
	query := r.db.Rebind(`
		SELECT m.id, m.user_id, m.company_id, m.role_id, m.is_active, c.name AS company_name, ro.name AS role_name
		FROM user_memberships m
		JOIN companies c ON c.id = m.company_id
		JOIN roles ro ON ro.id = m.role_id
		WHERE m.user_id = ? AND m.company_id = ? AND m.is_active = ? AND c.is_active = ?`)

	var rec auth.MembershipRecord
	if err := r.db.GetContext(ctx, &rec, query, userID, companyID, true, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CountMemberships counts memberships in any state.
func (r *Repository) CountMemberships(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM user_memberships WHERE user_id = ?`), userID)
	return count, err
}

func (r *Repository) ListMemberships(ctx context.Context, userID int64) ([]auth.MembershipRecord, error) {
	query := r.db.Rebind(`
		SELECT m.id, m.user_id, m.company_id, m.role_id, m.is_active, c.name AS company_name, ro.name AS role_name
		FROM user_memberships m
		JOIN companies c ON c.id = m.company_id
		JOIN roles ro ON ro.id = m.role_id
		WHERE m.user_id = ?
		ORDER BY m.company_id`)

	records := []auth.MembershipRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) GetRole(ctx context.Context, roleID int64) (*auth.RoleRecord, error) {
	return r.getRole(ctx, `SELECT id, name FROM roles WHERE id = ?`, roleID)
}

func (r *Repository) GetRoleByName(ctx context.Context, name string) (*auth.RoleRecord, error) {
	return r.getRole(ctx, `SELECT id, name FROM roles
		WHERE name = ? AND NOT EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id)`, name)
}

func (r *Repository) getRole(ctx context.Context, query string, arg interface{}) (*auth.RoleRecord, error) {
	var role auth.RoleRecord
	if err := r.db.GetContext(ctx, &role, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	slugs := []string{}
	permQuery := r.db.Rebind(`
		SELECT p.slug
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		ORDER BY p.slug`)
	if err := r.db.SelectContext(ctx, &slugs, permQuery, role.ID); err != nil {
		return nil, err
	}
	role.Permissions = slugs
	return &role, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
