package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/employee"
)

type Employee struct {
	ID           int64
	CompanyID    int64
	Name         string
	Registration string
	Document     *string
	AdmittedAt   time.Time
	DismissedAt  *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func FromDataModel(m *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Registration: m.Registration,
		Document:     m.Document,
		AdmittedAt:   m.AdmittedAt,
		DismissedAt:  m.DismissedAt,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		Name:         e.Name,
		Registration: e.Registration,
		Document:     e.Document,
		AdmittedAt:   e.AdmittedAt,
		DismissedAt:  e.DismissedAt,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
