package invitation

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	invitationDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/invitation"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/role"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	Create(ctx context.Context, inv *invitationDatamodel.Invitation) error
	GetByToken(ctx context.Context, token string) (*invitationDatamodel.Invitation, error)
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	EmailRegistered(ctx context.Context, email string) (bool, error)
	CreateIdentity(ctx context.Context, u *userDatamodel.User) error
	CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error
	GetCompanyName(ctx context.Context, id int64) (string, error)
	Roles() role.RepositoryAPI
}

type Service struct {
	repo       RepositoryAPI
	scope      role.ScopeValidator
	publisher  events.Publisher
	ttl        time.Duration
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo RepositoryAPI, scope role.ScopeValidator, publisher events.Publisher, ttl time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = internal.DefaultInvitationTTL
	}
	return &Service{
		repo:       repo,
		scope:      scope,
		publisher:  publisher,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, dto CreateInvitationDTO) (*Invitation, error) {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return nil, internal.ErrContextRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	registered, err := s.repo.EmailRegistered(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if registered {
		return nil, internal.ErrEmailExists
	}

	valid, err := s.scope.ValidateScope(ctx, dto.RoleID, tenantID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, internal.ErrRoleOutOfScope
	}

	token, err := auth.GenerateRandomToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate invitation token", err)
	}

	m := &invitationDatamodel.Invitation{
		Email:     dto.Email,
		RoleID:    dto.RoleID,
		CompanyID: tenantID,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("failed to create invitation", "error", err)
		return nil, internal.NewInternalError("failed to create invitation", err)
	}

	s.logger.Info("invitation created", "invitation_id", m.ID, "company_id", m.CompanyID)
	s.publish(ctx, events.NewInvitationCreatedEvent(m.ID, m.CompanyID, m.Email, m.Token, m.ExpiresAt))
	return FromDataModel(m), nil
}

// Validate checks a token from the public link. Expired invitations are
// discarded on sight.
func (s *Service) Validate(ctx context.Context, token string) (*ValidationResponse, error) {
	inv, err := s.usable(ctx, token)
	if err != nil {
		return nil, err
	}

	companyName, err := s.repo.GetCompanyName(ctx, inv.CompanyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company", err)
	}
	resp := &ValidationResponse{
		Email:       inv.Email,
		CompanyID:   inv.CompanyID,
		CompanyName: companyName,
		RoleID:      inv.RoleID,
		ExpiresAt:   inv.ExpiresAt,
	}
	roleModel, err := s.repo.Roles().GetByID(ctx, inv.RoleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if roleModel != nil {
		resp.RoleName = roleModel.Name
	}
	return resp, nil
}

// Accept creates the identity and its membership and consumes the invitation
// in one transaction.
func (s *Service) Accept(ctx context.Context, dto AcceptInvitationDTO) (*AcceptResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.usable(ctx, dto.Token); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	var resp AcceptResponse
	var invitationID int64
	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		m, err := tx.GetByToken(ctx, dto.Token)
		if err != nil {
			return internal.NewInternalError("failed to load invitation", err)
		}
		if m == nil {
			return internal.ErrInvitationNotFound
		}

		registered, err := tx.EmailRegistered(ctx, m.Email)
		if err != nil {
			return internal.NewInternalError("failed to check email", err)
		}
		if registered {
			return internal.ErrEmailExists
		}

		valid, err := role.NewScopeValidator(tx.Roles()).ValidateScope(ctx, m.RoleID, m.CompanyID)
		if err != nil {
			return err
		}
		if !valid {
			return internal.ErrRoleOutOfScope
		}

		u := &userDatamodel.User{
			Email:        m.Email,
			Name:         dto.Name,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := tx.CreateIdentity(ctx, u); err != nil {
			return internal.NewInternalError("failed to create user", err)
		}

		membership := &membershipDatamodel.Membership{UserID: u.ID, CompanyID: m.CompanyID, RoleID: m.RoleID, IsActive: true}
		if err := tx.CreateMembership(ctx, membership); err != nil {
			return internal.NewInternalError("failed to create membership", err)
		}

		if err := tx.Delete(ctx, m.ID); err != nil {
			return internal.NewInternalError("failed to consume invitation", err)
		}

		invitationID = m.ID
		resp = AcceptResponse{UserID: u.ID, Email: u.Email, CompanyID: m.CompanyID, RoleID: m.RoleID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted", "invitation_id", invitationID, "user_id", resp.UserID, "company_id", resp.CompanyID)
	s.publish(ctx, events.NewInvitationAcceptedEvent(invitationID, resp.UserID, resp.CompanyID))
	return &resp, nil
}

// PruneExpired deletes every expired invitation and returns how many went.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internal.NewInternalError("failed to prune invitations", err)
	}
	return n, nil
}

func (s *Service) usable(ctx context.Context, token string) (*Invitation, error) {
	if token == "" {
		return nil, internal.ErrInvitationNotFound
	}
	m, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, internal.NewInternalError("failed to load invitation", err)
	}
	if m == nil {
		return nil, internal.ErrInvitationNotFound
	}

	inv := FromDataModel(m)
	if inv.IsExpired(s.now()) {
		if err := s.repo.Delete(ctx, inv.ID); err != nil {
			s.logger.Error("failed to discard expired invitation", "invitation_id", inv.ID, "error", err)
		}
		return nil, internal.ErrInvitationExpired
	}
	return inv, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
