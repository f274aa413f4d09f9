package company

import "time"

const DefaultDominioRubric = "297"

type Company struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	ManagerID     *int64    `gorm:"column:manager_id"`
	PlanID        *int64    `gorm:"column:plan_id"`
	Plan          *Plan     `gorm:"foreignKey:PlanID"`
	DominioRubric string    `gorm:"column:dominio_rubric;size:9;not null"`
	DominioCode   *string   `gorm:"column:dominio_code;size:10"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

// Plan limits are nullable; nil means the resource is not capped.
type Plan struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	MaxUsers     *int64    `gorm:"column:max_users"`
	MaxEmployees *int64    `gorm:"column:max_employees"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Plan) TableName() string {
	return "plans"
}
