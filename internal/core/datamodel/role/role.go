package role

import (
	"time"

	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
)

type Feature struct {
	ID          int64        `gorm:"primaryKey"`
	Name        string       `gorm:"column:name;not null"`
	Slug        string       `gorm:"column:slug;uniqueIndex;not null"`
	Description string       `gorm:"column:description"`
	Permissions []Permission `gorm:"foreignKey:FeatureID"`
}

func (Feature) TableName() string {
	return "features"
}

type Permission struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"column:name;not null"`
	Slug      string `gorm:"column:slug;uniqueIndex;not null"`
	FeatureID *int64 `gorm:"column:feature_id"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Role is a shared definition. An empty Companies set makes it valid in
// every tenant.
type Role struct {
	ID          int64                      `gorm:"primaryKey"`
	Name        string                     `gorm:"column:name;index;not null"`
	Description string                     `gorm:"column:description"`
	Permissions []Permission               `gorm:"many2many:role_permissions;"`
	Companies   []companyDatamodel.Company `gorm:"many2many:role_companies;"`
	CreatedAt   time.Time                  `gorm:"column:created_at"`
	UpdatedAt   time.Time                  `gorm:"column:updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission and RoleCompany map the join tables so writes can replace
// links without upserting the linked rows.
type RolePermission struct {
	RoleID       int64 `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	PermissionID int64 `gorm:"column:permission_id;primaryKey;autoIncrement:false"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

type RoleCompany struct {
	RoleID    int64 `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	CompanyID int64 `gorm:"column:company_id;primaryKey;autoIncrement:false"`
}

func (RoleCompany) TableName() string {
	return "role_companies"
}
