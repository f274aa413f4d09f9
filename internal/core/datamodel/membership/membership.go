package membership

import "time"

type Membership struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_membership_user_company"`
	CompanyID int64     `gorm:"column:company_id;not null;uniqueIndex:idx_membership_user_company;index"`
	RoleID    int64     `gorm:"column:role_id;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Membership) TableName() string {
	return "user_memberships"
}
