package company

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/role"
)

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	Create(ctx context.Context, c *companyDatamodel.Company) error
	GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	PlanExists(ctx context.Context, planID int64) (bool, error)
	CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error
	// Roles returns the role repository sharing this repository's connection.
	Roles() role.RepositoryAPI
}

type Service struct {
	repo          RepositoryAPI
	publisher     events.Publisher
	ownerRoleName string
	logger        *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, ownerRoleName string, logger *slog.Logger) *Service {
	if ownerRoleName == "" {
		ownerRoleName = internal.DefaultOwnerRoleName
	}
	return &Service{
		repo:          repo,
		publisher:     publisher,
		ownerRoleName: ownerRoleName,
		logger:        logger,
	}
}

// Create bootstraps a company for the caller: the company, the caller's
// owner membership and the manager link are written in one transaction.
func (s *Service) Create(ctx context.Context, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	callerID := internal.UserIDFromContext(ctx)
	if callerID == 0 {
		return nil, internal.ErrUnauthenticated
	}

	m := &companyDatamodel.Company{
		Name:          dto.Name,
		IsActive:      true,
		PlanID:        dto.PlanID,
		DominioRubric: companyDatamodel.DefaultDominioRubric,
	}
	var membership membershipDatamodel.Membership

	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if dto.PlanID != nil {
			ok, err := tx.PlanExists(ctx, *dto.PlanID)
			if err != nil {
				return internal.NewInternalError("failed to load plan", err)
			}
			if !ok {
				return internal.NewValidationFieldError("plan_id", "plan does not exist", internal.ErrCodeValidationFailed)
			}
		}

		if err := tx.Create(ctx, m); err != nil {
			return internal.NewInternalError("failed to create company", err)
		}

		owner, err := tx.Roles().GetSharedByName(ctx, s.ownerRoleName)
		if err != nil {
			return internal.NewInternalError("failed to load owner role", err)
		}
		if owner == nil {
			return internal.NewInternalError("owner role is not configured", nil)
		}
		valid, err := role.NewScopeValidator(tx.Roles()).ValidateScope(ctx, owner.ID, m.ID)
		if err != nil {
			return err
		}
		if !valid {
			return internal.ErrRoleOutOfScope
		}

		membership = membershipDatamodel.Membership{UserID: callerID, CompanyID: m.ID, RoleID: owner.ID, IsActive: true}
		if err := tx.CreateMembership(ctx, &membership); err != nil {
			return internal.NewInternalError("failed to create membership", err)
		}

		m.ManagerID = &callerID
		return tx.Update(ctx, m.ID, map[string]interface{}{"manager_id": callerID})
	})
	if err != nil {
		s.logger.Error("company bootstrap failed", "user_id", callerID, "error", err)
		return nil, err
	}

	s.logger.Info("company created", "company_id", m.ID, "user_id", callerID)
	s.publish(ctx, events.NewCompanyCreatedEvent(m.ID, callerID, m.Name))
	s.publish(ctx, events.NewMembershipCreatedEvent(membership.ID, callerID, m.ID, membership.RoleID))

	return s.get(ctx, m.ID)
}

func (s *Service) GetCurrent(ctx context.Context) (*Company, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	return s.get(ctx, tenantID)
}

func (s *Service) UpdateCurrent(ctx context.Context, dto UpdateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.updateCurrent(ctx, map[string]interface{}{"name": dto.Name})
}

// InactivateCurrent deactivates the tenant. Its members lose access on the
// next request since resolution only admits active companies.
func (s *Service) InactivateCurrent(ctx context.Context) (*Company, error) {
	c, err := s.updateCurrent(ctx, map[string]interface{}{"is_active": false})
	if err != nil {
		return nil, err
	}
	s.logger.Warn("company inactivated", "company_id", c.ID, "user_id", internal.UserIDFromContext(ctx))
	return c, nil
}

func (s *Service) GetDominioConfig(ctx context.Context) (DominioConfigResponse, error) {
	c, err := s.GetCurrent(ctx)
	if err != nil {
		return DominioConfigResponse{}, err
	}
	return c.DominioConfig(), nil
}

func (s *Service) UpdateDominioConfig(ctx context.Context, dto DominioConfigDTO) (DominioConfigResponse, error) {
	if err := dto.Validate(); err != nil {
		return DominioConfigResponse{}, err
	}
	c, err := s.updateCurrent(ctx, map[string]interface{}{
		"dominio_rubric": dto.Rubric,
		"dominio_code":   dto.Code,
	})
	if err != nil {
		return DominioConfigResponse{}, err
	}
	return c.DominioConfig(), nil
}

func (s *Service) updateCurrent(ctx context.Context, fields map[string]interface{}) (*Company, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	if err := s.repo.Update(ctx, tenantID, fields); err != nil {
		s.logger.Error("failed to update company", "company_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to update company", err)
	}
	return s.get(ctx, tenantID)
}

func (s *Service) get(ctx context.Context, id int64) (*Company, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company", err)
	}
	if m == nil {
		return nil, internal.ErrTenantNotFound
	}
	return FromDataModel(m), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
