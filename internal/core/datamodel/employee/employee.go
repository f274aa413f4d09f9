package employee

import "time"

type Employee struct {
	ID           int64      `gorm:"primaryKey"`
	CompanyID    int64      `gorm:"column:company_id;not null;uniqueIndex:idx_employee_company_registration"`
	Name         string     `gorm:"column:name;not null"`
	Registration string     `gorm:"column:registration;not null;uniqueIndex:idx_employee_company_registration"`
	Document     *string    `gorm:"column:document"`
	AdmittedAt   time.Time  `gorm:"column:admitted_at;not null"`
	DismissedAt  *time.Time `gorm:"column:dismissed_at"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
