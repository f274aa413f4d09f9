package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/elementar/internal"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	"github.com/frahmantamala/elementar/internal/user"
	"gorm.io/gorm"
)

const memberColumns = `users.id AS user_id, user_memberships.id AS membership_id, users.email, users.name,
users.is_active AS user_active, user_memberships.is_active AS membership_active,
user_memberships.role_id, roles.name AS role_name, user_memberships.company_id,
user_memberships.created_at AS joined_at`

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Transaction(ctx context.Context, fn func(tx user.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

func (r *UserRepository) members(ctx context.Context, tenantID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("user_memberships").
		Select(memberColumns).
		Joins("JOIN users ON users.id = user_memberships.user_id").
		Joins("JOIN roles ON roles.id = user_memberships.role_id").
		Where("user_memberships.company_id = ?", tenantID)
}

func (r *UserRepository) ListMembers(ctx context.Context, tenantID int64) ([]*user.MemberRow, error) {
	var rows []*user.MemberRow
	err := r.members(ctx, tenantID).Order("users.name ASC").Scan(&rows).Error
	return rows, err
}

func (r *UserRepository) GetMember(ctx context.Context, tenantID, userID int64) (*user.MemberRow, error) {
	var rows []*user.MemberRow
	err := r.members(ctx, tenantID).Where("users.id = ?", userID).Limit(1).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *UserRepository) GetIdentityByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateIdentity(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailExists
	}
	return err
}

func (r *UserRepository) GetMembership(ctx context.Context, tenantID, userID int64) (*membershipDatamodel.Membership, error) {
	var m membershipDatamodel.Membership
	err := r.db.WithContext(ctx).Where("company_id = ? AND user_id = ?", tenantID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *UserRepository) CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrMembershipExists
	}
	return err
}

func (r *UserRepository) UpdateMembership(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&membershipDatamodel.Membership{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) Roles() role.RepositoryAPI {
	return rolePostgres.NewRoleRepository(r.db)
}
