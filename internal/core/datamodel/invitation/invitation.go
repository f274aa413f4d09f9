package invitation

import "time"

type Invitation struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	RoleID    int64     `gorm:"column:role_id;not null"`
	CompanyID int64     `gorm:"column:company_id;not null;index"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
