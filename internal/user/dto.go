package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

// CreateUserDTO adds a new identity to the current tenant. Existing
// identities join through invitations.
type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

func (d *CreateUserDTO) Validate() error {
	d.Email = validation.NormalizeEmail(d.Email)
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("role_id", d.RoleID).Required().Positive()
	v.Field("password", d.Password).Required().MinLength(validation.MinPasswordLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ChangeRoleDTO struct {
	RoleID int64 `json:"role_id"`
}

func (d *ChangeRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role_id", d.RoleID).Required().Positive()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type MemberResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	RoleID    int64     `json:"role_id"`
	RoleName  string    `json:"role_name"`
	CompanyID int64     `json:"company_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

type MembersResponse struct {
	Users []MemberResponse `json:"users"`
}
