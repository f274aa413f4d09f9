package employee

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	employeeDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/employee"
)

// RepositoryAPI runs through the scoped gateway: none of its methods take a
// tenant, the request context carries it.
type RepositoryAPI interface {
	List(ctx context.Context, onlyActive bool) ([]*employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) (bool, error)
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

func (s *Service) List(ctx context.Context, onlyActive bool) ([]*Employee, error) {
	if err := requireTenant(ctx); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	out := make([]*Employee, 0, len(rows))
	for _, m := range rows {
		out = append(out, FromDataModel(m))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	if err := requireTenant(ctx); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := requireTenant(ctx); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m := &employeeDatamodel.Employee{
		Name:         dto.Name,
		Registration: dto.Registration,
		Document:     dto.Document,
		AdmittedAt:   dto.AdmittedAt,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create employee", "error", err)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created", "employee_id", m.ID, "company_id", m.CompanyID)
	return FromDataModel(m), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := requireTenant(ctx); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":         dto.Name,
		"document":     dto.Document,
		"admitted_at":  dto.AdmittedAt,
		"dismissed_at": dto.DismissedAt,
	}
	if dto.IsActive != nil {
		fields["is_active"] = *dto.IsActive
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, internal.NewInternalError("failed to update employee", err)
	}
	return s.get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := requireTenant(ctx); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete employee", err)
	}
	if !deleted {
		return internal.ErrEmployeeNotFound
	}
	s.logger.Info("employee deleted", "employee_id", id, "user_id", internal.UserIDFromContext(ctx))
	return nil
}

func (s *Service) get(ctx context.Context, id int64) (*Employee, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if m == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return FromDataModel(m), nil
}

// requireTenant refuses to run without a tenant, since the gateway would
// otherwise leave the statement unfiltered.
func requireTenant(ctx context.Context) error {
	if _, ok := internal.TenantIDFromContext(ctx); !ok {
		return internal.ErrContextRequired
	}
	return nil
}
