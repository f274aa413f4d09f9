package invitation

import (
	"time"

	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

type CreateInvitationDTO struct {
	Email  string `json:"email"`
	RoleID int64  `json:"role_id"`
}

func (d *CreateInvitationDTO) Validate() error {
	d.Email = validation.NormalizeEmail(d.Email)
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("role_id", d.RoleID).Required().Positive()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AcceptInvitationDTO struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d *AcceptInvitationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("password", d.Password).Required().MinLength(validation.MinPasswordLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// InvitationResponse includes the token because delivery is out of band.
type InvitationResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	CompanyID int64     `json:"company_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidationResponse struct {
	Email       string    `json:"email"`
	CompanyID   int64     `json:"company_id"`
	CompanyName string    `json:"company_name"`
	RoleID      int64     `json:"role_id"`
	RoleName    string    `json:"role_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AcceptResponse struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	CompanyID int64  `json:"company_id"`
	RoleID    int64  `json:"role_id"`
}
