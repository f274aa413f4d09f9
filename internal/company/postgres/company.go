package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/elementar/internal/company"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Transaction(ctx context.Context, fn func(tx company.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CompanyRepository{db: tx})
	})
}

func (r *CompanyRepository) Create(ctx context.Context, c *companyDatamodel.Company) error {
	return r.db.WithContext(ctx).Omit("Plan").Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&companyDatamodel.Company{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CompanyRepository) PlanExists(ctx context.Context, planID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&companyDatamodel.Plan{}).Where("id = ?", planID).Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *CompanyRepository) Roles() role.RepositoryAPI {
	return rolePostgres.NewRoleRepository(r.db)
}
