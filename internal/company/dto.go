package company

import (
	"strings"
	"time"

	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

const (
	MaxDominioRubricLength = 9
	MaxDominioCodeLength   = 10
)

type CreateCompanyDTO struct {
	Name   string `json:"name"`
	PlanID *int64 `json:"plan_id"`
}

func (d *CreateCompanyDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	if d.PlanID != nil {
		v.Field("plan_id", *d.PlanID).Positive()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateCompanyDTO struct {
	Name string `json:"name"`
}

func (d *UpdateCompanyDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DominioConfigDTO struct {
	Rubric string  `json:"dominio_rubric"`
	Code   *string `json:"dominio_code"`
}

func (d *DominioConfigDTO) Validate() error {
	d.Rubric = strings.TrimSpace(d.Rubric)
	v := validation.NewValidator()
	v.Field("dominio_rubric", d.Rubric).Required().MaxLength(MaxDominioRubricLength)
	v.Field("dominio_code", d.Code).MaxLength(MaxDominioCodeLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CompanyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	ManagerID *int64    `json:"manager_id"`
	PlanID    *int64    `json:"plan_id"`
	PlanName  string    `json:"plan_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DominioConfigResponse struct {
	Rubric string  `json:"dominio_rubric"`
	Code   *string `json:"dominio_code"`
}
