package user

import (
	"time"

	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
)

// Member is an identity seen through its membership in one tenant.
type Member struct {
	ID           int64
	MembershipID int64
	Email        string
	Name         string
	IsActive     bool
	RoleID       int64
	RoleName     string
	CompanyID    int64
	JoinedAt     time.Time
}

// MemberRow is the joined users/user_memberships/roles row.
type MemberRow struct {
	UserID           int64     `gorm:"column:user_id"`
	MembershipID     int64     `gorm:"column:membership_id"`
	Email            string    `gorm:"column:email"`
	Name             string    `gorm:"column:name"`
	UserActive       bool      `gorm:"column:user_active"`
	MembershipActive bool      `gorm:"column:membership_active"`
	RoleID           int64     `gorm:"column:role_id"`
	RoleName         string    `gorm:"column:role_name"`
	CompanyID        int64     `gorm:"column:company_id"`
	JoinedAt         time.Time `gorm:"column:joined_at"`
}

func FromRow(r *MemberRow) *Member {
	return &Member{
		ID:           r.UserID,
		MembershipID: r.MembershipID,
		Email:        r.Email,
		Name:         r.Name,
		IsActive:     r.UserActive && r.MembershipActive,
		RoleID:       r.RoleID,
		RoleName:     r.RoleName,
		CompanyID:    r.CompanyID,
		JoinedAt:     r.JoinedAt,
	}
}

func newMember(u *userDatamodel.User, m *membershipDatamodel.Membership, roleName string) *Member {
	return &Member{
		ID:           u.ID,
		MembershipID: m.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsActive:     u.IsActive && m.IsActive,
		RoleID:       m.RoleID,
		RoleName:     roleName,
		CompanyID:    m.CompanyID,
		JoinedAt:     m.CreatedAt,
	}
}

func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		IsActive:  m.IsActive,
		RoleID:    m.RoleID,
		RoleName:  m.RoleName,
		CompanyID: m.CompanyID,
		JoinedAt:  m.JoinedAt,
	}
}
