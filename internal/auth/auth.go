package auth

import (
	"context"
	"sort"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// Identity is the resolved caller attached to every authenticated request.
type Identity struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     RoleView `json:"role"`
	TenantID *int64   `json:"tenant_id"`
}

type RoleView struct {
	ID          int64    `json:"id,omitempty"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (i *Identity) HasPermission(p Permission) bool {
	idx := sort.SearchStrings(i.Role.Permissions, string(p))
	return idx < len(i.Role.Permissions) && i.Role.Permissions[idx] == string(p)
}

func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, identity)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return identity, ok && identity != nil
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IdentityRecord is the stored identity as read by the resolver and login.
type IdentityRecord struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	IsActive     bool   `db:"is_active"`
	CompanyID    *int64 `db:"company_id"`
	RoleID       *int64 `db:"role_id"`
}

type MembershipRecord struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	CompanyID   int64  `db:"company_id"`
	RoleID      int64  `db:"role_id"`
	IsActive    bool   `db:"is_active"`
	CompanyName string `db:"company_name"`
	RoleName    string `db:"role_name"`
}

type RoleRecord struct {
	ID          int64    `db:"id"`
	Name        string   `db:"name"`
	Permissions []string `db:"-"`
}

type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type MembershipView struct {
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	RoleID      int64  `json:"role_id"`
	RoleName    string `json:"role_name"`
	IsActive    bool   `json:"is_active"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	AuthTokens
	User        UserView         `json:"user"`
	Memberships []MembershipView `json:"memberships"`
}

// MeResponse answers the self-lookup endpoint.
type MeResponse struct {
	User        UserView         `json:"user"`
	TenantID    *int64           `json:"tenant_id"`
	Role        RoleView         `json:"role"`
	Memberships []MembershipView `json:"memberships"`
}

func toMembershipViews(records []MembershipRecord) []MembershipView {
	views := make([]MembershipView, 0, len(records))
	for _, m := range records {
		views = append(views, MembershipView{
			CompanyID:   m.CompanyID,
			CompanyName: m.CompanyName,
			RoleID:      m.RoleID,
			RoleName:    m.RoleName,
			IsActive:    m.IsActive,
		})
	}
	return views
}
