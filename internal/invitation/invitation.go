package invitation

import (
	"time"

	invitationDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/invitation"
)

type Invitation struct {
	ID        int64
	Email     string
	RoleID    int64
	CompanyID int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

func FromDataModel(m *invitationDatamodel.Invitation) *Invitation {
	return &Invitation{
		ID:        m.ID,
		Email:     m.Email,
		RoleID:    m.RoleID,
		CompanyID: m.CompanyID,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}
