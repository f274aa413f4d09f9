package postgres

import (
	"context"
	"errors"
	"time"

	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/employee"
	invitationDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/invitation"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	"github.com/frahmantamala/elementar/internal/usage"
	"gorm.io/gorm"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) usage.RepositoryAPI {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) GetTenant(ctx context.Context, tenantID int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", tenantID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *UsageRepository) CountActiveMemberships(ctx context.Context, tenantID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&membershipDatamodel.Membership{}).
		Where("company_id = ? AND is_active = ?", tenantID, true).
		Count(&count).Error
	return count, err
}

// CountActiveEmployees relies on the scoped gateway for the tenant filter.
func (r *UsageRepository) CountActiveEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// CountPendingInvitations counts unexpired invitations of the scoped tenant.
func (r *UsageRepository) CountPendingInvitations(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&invitationDatamodel.Invitation{}).
		Where("expires_at > ?", now).
		Count(&count).Error
	return count, err
}
