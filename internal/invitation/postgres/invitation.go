package postgres

import (
	"context"
	"errors"
	"time"

	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	invitationDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/invitation"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/invitation"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) invitation.RepositoryAPI {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Transaction(ctx context.Context, fn func(tx invitation.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&InvitationRepository{db: tx})
	})
}

// Create leaves company_id to the scoped gateway.
func (r *InvitationRepository) Create(ctx context.Context, inv *invitationDatamodel.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*invitationDatamodel.Invitation, error) {
	var inv invitationDatamodel.Invitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&invitationDatamodel.Invitation{}).Error
}

func (r *InvitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&invitationDatamodel.Invitation{})
	return res.RowsAffected, res.Error
}

func (r *InvitationRepository) EmailRegistered(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) CreateIdentity(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *InvitationRepository) CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *InvitationRepository) GetCompanyName(ctx context.Context, id int64) (string, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Select("id", "name").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return c.Name, nil
}

func (r *InvitationRepository) Roles() role.RepositoryAPI {
	return rolePostgres.NewRoleRepository(r.db)
}
