package company

import (
	"time"

	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
)

type Company struct {
	ID            int64
	Name          string
	IsActive      bool
	ManagerID     *int64
	PlanID        *int64
	PlanName      string
	DominioRubric string
	DominioCode   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Company) ToResponse() CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsActive:  c.IsActive,
		ManagerID: c.ManagerID,
		PlanID:    c.PlanID,
		PlanName:  c.PlanName,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (c *Company) DominioConfig() DominioConfigResponse {
	return DominioConfigResponse{Rubric: c.DominioRubric, Code: c.DominioCode}
}

func FromDataModel(m *companyDatamodel.Company) *Company {
	c := &Company{
		ID:            m.ID,
		Name:          m.Name,
		IsActive:      m.IsActive,
		ManagerID:     m.ManagerID,
		PlanID:        m.PlanID,
		DominioRubric: m.DominioRubric,
		DominioCode:   m.DominioCode,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.Plan != nil {
		c.PlanName = m.Plan.Name
	}
	return c
}
