package user

import "time"

// User is a global identity. CompanyID and RoleID are the legacy single
// tenant fields kept for accounts created before memberships existed.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CompanyID    *int64    `gorm:"column:company_id"`
	RoleID       *int64    `gorm:"column:role_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
