package auth

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/frahmantamala/elementar/internal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Access selects which no-tenant carve-out, if any, a route allows.
type Access int

const (
	AccessTenant Access = iota
	AccessSelf
	AccessBootstrap
)

func (a Access) String() string {
	switch a {
	case AccessSelf:
		return "self"
	case AccessBootstrap:
		return "bootstrap"
	default:
		return "tenant"
	}
}

// MembershipRepository is the read side the resolver depends on. Lookups
// return nil, nil when nothing matches.
type MembershipRepository interface {
	GetIdentityByID(ctx context.Context, id int64) (*IdentityRecord, error)
	FindActiveMembership(ctx context.Context, userID, companyID int64) (*MembershipRecord, error)
	CountMemberships(ctx context.Context, userID int64) (int64, error)
	GetRole(ctx context.Context, roleID int64) (*RoleRecord, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, subjectID int64, tenantHint string, access Access) (*Identity, error)
}

var tracer trace.Tracer = otel.Tracer("github.com/frahmantamala/elementar/internal/auth")

type Resolver struct {
	repo MembershipRepository
}

func NewResolver(repo MembershipRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve loads the identity behind subjectID and binds it to the tenant in
// tenantHint. It performs no writes.
func (r *Resolver) Resolve(ctx context.Context, subjectID int64, tenantHint string, access Access) (*Identity, error) {
	ctx, span := tracer.Start(ctx, "auth.resolve", trace.WithAttributes(
		attribute.Int64("auth.subject_id", subjectID),
		attribute.String("auth.access", access.String()),
		attribute.Bool("auth.tenant_hint", tenantHint != ""),
	))
	defer span.End()

	identity, err := r.resolve(ctx, subjectID, strings.TrimSpace(tenantHint), access)
	outcome := "ok"
	if err != nil {
		outcome = outcomeFor(err)
		span.SetStatus(codes.Error, outcome)
	} else if identity.TenantID != nil {
		span.SetAttributes(attribute.Int64("auth.tenant_id", *identity.TenantID))
	}
	resolutionsTotal.WithLabelValues(access.String(), outcome).Inc()
	return identity, err
}

func (r *Resolver) resolve(ctx context.Context, subjectID int64, hint string, access Access) (*Identity, error) {
	rec, err := r.repo.GetIdentityByID(ctx, subjectID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load identity", err)
	}
	if rec == nil {
		return nil, internal.ErrIdentityNotFound
	}
	if !rec.IsActive {
		return nil, internal.ErrUserInactive
	}

	identity := &Identity{ID: rec.ID, Email: rec.Email, Name: rec.Name}

	if hint == "" {
		return r.resolveWithoutTenant(ctx, rec, identity, access)
	}

	tenantID, err := strconv.ParseInt(hint, 10, 64)
	if err != nil || tenantID <= 0 {
		return nil, internal.ErrNotAMember
	}
	membership, err := r.repo.FindActiveMembership(ctx, rec.ID, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load membership", err)
	}
	if membership == nil {
		return nil, internal.ErrNotAMember
	}

	role, err := r.repo.GetRole(ctx, membership.RoleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role != nil {
		identity.Role = toRoleView(role)
	} else {
		identity.Role = RoleView{Permissions: []string{}}
	}
	identity.TenantID = &tenantID
	return identity, nil
}

func (r *Resolver) resolveWithoutTenant(ctx context.Context, rec *IdentityRecord, identity *Identity, access Access) (*Identity, error) {
	if access == AccessTenant {
		return nil, internal.ErrContextRequired
	}

	count, err := r.repo.CountMemberships(ctx, rec.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count memberships", err)
	}
	if access == AccessBootstrap && count > 0 {
		return nil, internal.ErrContextRequired
	}

	identity.Role = RoleView{Permissions: []string{}}
	// legacy global role only applies before the first membership exists
	if count == 0 && rec.RoleID != nil {
		role, err := r.repo.GetRole(ctx, *rec.RoleID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load role", err)
		}
		if role != nil {
			identity.Role = toRoleView(role)
		}
	}
	return identity, nil
}

func toRoleView(role *RoleRecord) RoleView {
	perms := make([]string, len(role.Permissions))
	copy(perms, role.Permissions)
	sort.Strings(perms)
	return RoleView{ID: role.ID, Name: role.Name, Permissions: perms}
}

func outcomeFor(err error) string {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return "error"
	}
	switch appErr.Code {
	case internal.ErrCodeNotAMember:
		return "not_a_member"
	case internal.ErrCodeTenantContextRequired:
		return "context_required"
	case internal.ErrCodeUserInactive:
		return "inactive"
	case internal.ErrCodeUserNotFound:
		return "unknown_identity"
	default:
		return "error"
	}
}
