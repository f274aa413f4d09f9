package employee

import (
	"strings"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

const (
	MaxRegistrationLength = 20
	MaxDocumentLength     = 20
)

// CreateEmployeeDTO never carries a company; the tenant is assigned on insert.
type CreateEmployeeDTO struct {
	Name         string    `json:"name"`
	Registration string    `json:"registration"`
	Document     *string   `json:"document,omitempty"`
	AdmittedAt   time.Time `json:"admitted_at"`
}

func (d *CreateEmployeeDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Registration = strings.TrimSpace(d.Registration)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("registration", d.Registration).Required().MaxLength(MaxRegistrationLength)
	v.Field("document", d.Document).MaxLength(MaxDocumentLength)
	v.Field("admitted_at", d.AdmittedAt).Required().NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateEmployeeDTO struct {
	Name        string     `json:"name"`
	Document    *string    `json:"document,omitempty"`
	AdmittedAt  time.Time  `json:"admitted_at"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

func (d *UpdateEmployeeDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("document", d.Document).MaxLength(MaxDocumentLength)
	v.Field("admitted_at", d.AdmittedAt).Required().NotFuture()
	if d.DismissedAt != nil {
		admitted := d.AdmittedAt
		v.Field("dismissed_at", *d.DismissedAt).Custom(func(value interface{}) *internal.AppError {
			if value.(time.Time).Before(admitted) {
				return internal.NewValidationFieldError("dismissed_at", "dismissed_at cannot precede admitted_at", internal.ErrCodeValidationFailed)
			}
			return nil
		})
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type EmployeeResponse struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"company_id"`
	Name         string     `json:"name"`
	Registration string     `json:"registration"`
	Document     *string    `json:"document,omitempty"`
	AdmittedAt   time.Time  `json:"admitted_at"`
	DismissedAt  *time.Time `json:"dismissed_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type EmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}
