package role

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
)

type RepositoryAPI interface {
	ListVisible(ctx context.Context, tenantID int64) ([]*roleDatamodel.Role, error)
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	GetSharedByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	NameTaken(ctx context.Context, name string, tenantID, excludeID int64) (bool, error)
	Create(ctx context.Context, role *roleDatamodel.Role, permissionIDs, companyIDs []int64) error
	Update(ctx context.Context, role *roleDatamodel.Role, permissionIDs []int64) error
	Delete(ctx context.Context, id int64) error
	CountAssignments(ctx context.Context, roleID int64) (int64, error)
	FindPermissionsBySlugs(ctx context.Context, slugs []string) ([]roleDatamodel.Permission, error)
	ListPermissions(ctx context.Context) ([]roleDatamodel.Permission, error)
	ListFeatures(ctx context.Context) ([]roleDatamodel.Feature, error)
}

// ScopeValidator checks a role against the tenant a membership binds it to.
type ScopeValidator interface {
	ValidateScope(ctx context.Context, roleID, tenantID int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// NewScopeValidator returns a validator reading through repo, typically a
// repository bound to an open transaction.
func NewScopeValidator(repo RepositoryAPI) ScopeValidator {
	return &Service{repo: repo, logger: slog.Default()}
}

// ValidateScope is true when the role is global or scoped to tenantID.
func (s *Service) ValidateScope(ctx context.Context, roleID, tenantID int64) (bool, error) {
	m, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return false, internal.NewInternalError("failed to load role", err)
	}
	if m == nil {
		return false, internal.ErrRoleNotFound
	}
	return FromDataModel(m).ValidFor(tenantID), nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	models, err := s.repo.ListVisible(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, 0, len(models))
	for _, m := range models {
		roles = append(roles, FromDataModel(m))
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.visibleRole(ctx, id, tenantID)
}

func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	for _, id := range dto.CompanyIDs {
		if id != tenantID {
			return nil, internal.NewForbiddenError("Roles can only be created for the current company", internal.ErrCodeRoleNotManageable)
		}
	}

	if err := s.ensureNameFree(ctx, dto.Name, tenantID, 0); err != nil {
		return nil, err
	}
	permissionIDs, err := s.permissionIDs(ctx, dto.Permissions)
	if err != nil {
		return nil, err
	}

	m := &roleDatamodel.Role{Name: dto.Name, Description: dto.Description}
	if err := s.repo.Create(ctx, m, permissionIDs, []int64{tenantID}); err != nil {
		s.logger.Error("failed to create role", "error", err)
		return nil, err
	}
	s.logger.Info("role created", "role_id", m.ID, "tenant_id", tenantID)

	return s.visibleRole(ctx, m.ID, tenantID)
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.manageableRole(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, dto.Name, tenantID, id); err != nil {
		return nil, err
	}
	permissionIDs, err := s.permissionIDs(ctx, dto.Permissions)
	if err != nil {
		return nil, err
	}

	m := &roleDatamodel.Role{
		ID:          existing.ID,
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   existing.CreatedAt,
	}
	if err := s.repo.Update(ctx, m, permissionIDs); err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return nil, err
	}

	return s.visibleRole(ctx, id, tenantID)
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return err
	}
	if _, err := s.manageableRole(ctx, id, tenantID); err != nil {
		return err
	}

	assigned, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to check role assignments", err)
	}
	if assigned > 0 {
		return internal.ErrRoleInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete role", "role_id", id, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	return nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	out := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResponse(p))
	}
	return out, nil
}

func (s *Service) ListFeatures(ctx context.Context) ([]FeatureResponse, error) {
	features, err := s.repo.ListFeatures(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list features", err)
	}
	out := make([]FeatureResponse, 0, len(features))
	for _, f := range features {
		resp := FeatureResponse{
			ID:          f.ID,
			Name:        f.Name,
			Slug:        f.Slug,
			Description: f.Description,
			Permissions: make([]PermissionResponse, 0, len(f.Permissions)),
		}
		for _, p := range f.Permissions {
			resp.Permissions = append(resp.Permissions, toPermissionResponse(p))
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) visibleRole(ctx context.Context, id, tenantID int64) (*Role, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if m == nil {
		return nil, internal.ErrRoleNotFound
	}
	r := FromDataModel(m)
	if !r.ValidFor(tenantID) {
		return nil, internal.ErrRoleNotFound
	}
	return r, nil
}

func (s *Service) manageableRole(ctx context.Context, id, tenantID int64) (*Role, error) {
	r, err := s.visibleRole(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if !r.ManagedBy(tenantID) {
		return nil, internal.ErrRoleNotManageable
	}
	return r, nil
}

// ensureNameFree only looks at roles visible to the tenant, so private role
// names of other tenants neither collide nor leak.
func (s *Service) ensureNameFree(ctx context.Context, name string, tenantID, selfID int64) error {
	taken, err := s.repo.NameTaken(ctx, name, tenantID, selfID)
	if err != nil {
		return internal.NewInternalError("failed to check role name", err)
	}
	if taken {
		return internal.ErrRoleNameExists
	}
	return nil
}

func (s *Service) permissionIDs(ctx context.Context, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	unique := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		unique[slug] = struct{}{}
	}

	perms, err := s.repo.FindPermissionsBySlugs(ctx, slugs)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permissions", err)
	}
	if len(perms) != len(unique) {
		found := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			found[p.Slug] = struct{}{}
		}
		for slug := range unique {
			if _, ok := found[slug]; !ok {
				return nil, internal.NewValidationFieldError("permissions", fmt.Sprintf("unknown permission '%s'", slug), internal.ErrCodeValidationFailed)
			}
		}
	}

	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func requireTenant(ctx context.Context) (int64, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return 0, internal.ErrContextRequired
	}
	return tenantID, nil
}

func toPermissionResponse(p roleDatamodel.Permission) PermissionResponse {
	return PermissionResponse{ID: p.ID, Name: p.Name, Slug: p.Slug, FeatureID: p.FeatureID}
}
