package role

import (
	"sort"
	"time"

	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
)

// Role is a shared role definition. CompanyIDs is its tenant scope; an empty
// scope makes the role valid everywhere.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []string
	CompanyIDs  []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Role) IsGlobal() bool {
	return len(r.CompanyIDs) == 0
}

// ValidFor reports whether the role may back a membership in tenantID.
func (r *Role) ValidFor(tenantID int64) bool {
	if r.IsGlobal() {
		return true
	}
	for _, id := range r.CompanyIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// ManagedBy reports whether the role is private to tenantID and so may be
// edited from that tenant.
func (r *Role) ManagedBy(tenantID int64) bool {
	return len(r.CompanyIDs) == 1 && r.CompanyIDs[0] == tenantID
}

func (r *Role) ToResponse() RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		CompanyIDs:  r.CompanyIDs,
		Shared:      r.IsGlobal(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(m *roleDatamodel.Role) *Role {
	perms := make([]string, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		perms = append(perms, p.Slug)
	}
	sort.Strings(perms)

	companyIDs := make([]int64, 0, len(m.Companies))
	for _, c := range m.Companies {
		companyIDs = append(companyIDs, c.ID)
	}
	sort.Slice(companyIDs, func(i, j int) bool { return companyIDs[i] < companyIDs[j] })

	return &Role{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Permissions: perms,
		CompanyIDs:  companyIDs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
