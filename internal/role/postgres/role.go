package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/elementar/internal"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	"github.com/frahmantamala/elementar/internal/role"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("slug ASC") }).
		Preload("Companies")
}

// ListVisible returns global roles plus roles scoped to tenantID.
func (r *RoleRepository) ListVisible(ctx context.Context, tenantID int64) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.withRelations(ctx).
		Where("NOT EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id)").
		Or("EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id AND rc.company_id = ?)", tenantID).
		Order("name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	var m roleDatamodel.Role
	err := r.withRelations(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetSharedByName looks up a role that is valid in every tenant.
func (r *RoleRepository) GetSharedByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	var m roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Where("NOT EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id)").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// NameTaken reports whether a shared role or a role scoped to tenantID
// already uses name.
func (r *RoleRepository) NameTaken(ctx context.Context, name string, tenantID, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&roleDatamodel.Role{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Where(r.db.
			Where("NOT EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id)").
			Or("EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id AND rc.company_id = ?)", tenantID)).
		Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) Create(ctx context.Context, m *roleDatamodel.Role, permissionIDs, companyIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrRoleNameExists
			}
			return err
		}
		if err := linkPermissions(tx, m.ID, permissionIDs); err != nil {
			return err
		}
		if len(companyIDs) == 0 {
			return nil
		}
		links := make([]roleDatamodel.RoleCompany, 0, len(companyIDs))
		for _, id := range companyIDs {
			links = append(links, roleDatamodel.RoleCompany{RoleID: m.ID, CompanyID: id})
		}
		return tx.Create(&links).Error
	})
}

// Update replaces name, description and the permission set. The tenant
// scope is left as created.
func (r *RoleRepository) Update(ctx context.Context, m *roleDatamodel.Role, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&roleDatamodel.Role{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"name":        m.Name,
			"description": m.Description,
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrRoleNameExists
			}
			return err
		}
		if err := tx.Where("role_id = ?", m.ID).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return linkPermissions(tx, m.ID, permissionIDs)
	})
}

func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RoleCompany{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&roleDatamodel.Role{}).Error
	})
}

// CountAssignments counts memberships and legacy identities using the role.
func (r *RoleRepository) CountAssignments(ctx context.Context, roleID int64) (int64, error) {
	var memberships, legacy int64
	if err := r.db.WithContext(ctx).Table("user_memberships").Where("role_id = ?", roleID).Count(&memberships).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Table("users").Where("role_id = ?", roleID).Count(&legacy).Error; err != nil {
		return 0, err
	}
	return memberships + legacy, nil
}

func (r *RoleRepository) FindPermissionsBySlugs(ctx context.Context, slugs []string) ([]roleDatamodel.Permission, error) {
	var perms []roleDatamodel.Permission
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&perms).Error
	return perms, err
}

func (r *RoleRepository) ListPermissions(ctx context.Context) ([]roleDatamodel.Permission, error) {
	var perms []roleDatamodel.Permission
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&perms).Error
	return perms, err
}

func (r *RoleRepository) ListFeatures(ctx context.Context) ([]roleDatamodel.Feature, error) {
	var features []roleDatamodel.Feature
	err := r.db.WithContext(ctx).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("slug ASC") }).
		Order("name ASC").
		Find(&features).Error
	return features, err
}

func linkPermissions(tx *gorm.DB, roleID int64, permissionIDs []int64) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	links := make([]roleDatamodel.RolePermission, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		links = append(links, roleDatamodel.RolePermission{RoleID: roleID, PermissionID: id})
	}
	return tx.Create(&links).Error
}
