package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/role"
)

// RepositoryAPI filters memberships by tenant explicitly; user_memberships is
// read before a tenant exists so it stays outside the scoped gateway.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	ListMembers(ctx context.Context, tenantID int64) ([]*MemberRow, error)
	GetMember(ctx context.Context, tenantID, userID int64) (*MemberRow, error)
	GetIdentityByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	CreateIdentity(ctx context.Context, u *userDatamodel.User) error
	GetMembership(ctx context.Context, tenantID, userID int64) (*membershipDatamodel.Membership, error)
	CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error
	UpdateMembership(ctx context.Context, id int64, fields map[string]interface{}) error
	Roles() role.RepositoryAPI
}

type Service struct {
	repo       RepositoryAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Member, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	rows, err := s.repo.ListMembers(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	members := make([]*Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, FromRow(r))
	}
	return members, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*Member, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	return s.get(ctx, tenantID, userID)
}

// Create registers a new identity and binds it to the current tenant. An email
// that already belongs to an identity is a conflict; that person has to be
// invited instead.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*Member, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var member *Member
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		valid, err := role.NewScopeValidator(tx.Roles()).ValidateScope(ctx, dto.RoleID, tenantID)
		if err != nil {
			return err
		}
		if !valid {
			return internal.ErrRoleOutOfScope
		}
		roleModel, err := tx.Roles().GetByID(ctx, dto.RoleID)
		if err != nil {
			return internal.NewInternalError("failed to load role", err)
		}

		existing, err := tx.GetIdentityByEmail(ctx, dto.Email)
		if err != nil {
			return internal.NewInternalError("failed to load user", err)
		}
		if existing != nil {
			return internal.ErrEmailExists
		}
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return internal.NewInternalError("failed to hash password", err)
		}
		u := &userDatamodel.User{Email: dto.Email, Name: dto.Name, PasswordHash: hash, IsActive: true}
		if err := tx.CreateIdentity(ctx, u); err != nil {
			return passThrough(err, "failed to create user")
		}

		m := &membershipDatamodel.Membership{UserID: u.ID, CompanyID: tenantID, RoleID: roleModel.ID, IsActive: true}
		if err := tx.CreateMembership(ctx, m); err != nil {
			return passThrough(err, "failed to create membership")
		}
		member = newMember(u, m, roleModel.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member added", "user_id", member.ID, "company_id", tenantID)
	s.publish(ctx, events.NewMembershipCreatedEvent(member.MembershipID, member.ID, tenantID, member.RoleID))
	return member, nil
}

// ChangeRole rebinds the member's membership in the current tenant.
func (s *Service) ChangeRole(ctx context.Context, userID int64, dto ChangeRoleDTO) (*Member, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		m, err := tx.GetMembership(ctx, tenantID, userID)
		if err != nil {
			return internal.NewInternalError("failed to load membership", err)
		}
		if m == nil {
			return internal.ErrUserNotFound
		}
		valid, err := role.NewScopeValidator(tx.Roles()).ValidateScope(ctx, dto.RoleID, tenantID)
		if err != nil {
			return err
		}
		if !valid {
			return internal.ErrRoleOutOfScope
		}
		return tx.UpdateMembership(ctx, m.ID, map[string]interface{}{"role_id": dto.RoleID})
	})
	if err != nil {
		return nil, passThrough(err, "failed to change role")
	}

	s.logger.Info("member role changed", "user_id", userID, "company_id", tenantID, "role_id", dto.RoleID)
	return s.get(ctx, tenantID, userID)
}

// Inactivate deactivates the membership in the current tenant only; the
// identity and its other memberships are untouched.
func (s *Service) Inactivate(ctx context.Context, userID int64) (*Member, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	m, err := s.repo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load membership", err)
	}
	if m == nil {
		return nil, internal.ErrUserNotFound
	}
	if err := s.repo.UpdateMembership(ctx, m.ID, map[string]interface{}{"is_active": false}); err != nil {
		return nil, internal.NewInternalError("failed to inactivate membership", err)
	}

	s.logger.Warn("membership inactivated", "user_id", userID, "company_id", tenantID, "by", internal.UserIDFromContext(ctx))
	return s.get(ctx, tenantID, userID)
}

func (s *Service) get(ctx context.Context, tenantID, userID int64) (*Member, error) {
	row, err := s.repo.GetMember(ctx, tenantID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromRow(row), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func passThrough(err error, message string) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewInternalError(message, err)
}
