package role

import (
	"time"

	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	CompanyIDs  []int64  `json:"company_ids"`
}

func (d *CreateRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("description", d.Description).MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateRoleDTO never carries a scope: a role's tenants are fixed at creation.
type UpdateRoleDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (d *UpdateRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("description", d.Description).MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RoleResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CompanyIDs  []int64   `json:"company_ids"`
	Shared      bool      `json:"shared"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

type PermissionResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	FeatureID *int64 `json:"feature_id,omitempty"`
}

type PermissionsResponse struct {
	Permissions []PermissionResponse `json:"permissions"`
}

type FeatureResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
}

type FeaturesResponse struct {
	Features []FeatureResponse `json:"features"`
}
