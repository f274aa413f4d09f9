package task

import "time"

type Task struct {
	ID          int64      `gorm:"primaryKey"`
	CompanyID   int64      `gorm:"column:company_id;not null;index"`
	OwnerUserID int64      `gorm:"column:owner_user_id;not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Description *string    `gorm:"column:description"`
	Status      string     `gorm:"column:status;not null"`
	IsPublic    bool       `gorm:"column:is_public;not null"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
