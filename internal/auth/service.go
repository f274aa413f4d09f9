package auth

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the full store surface of the auth package.
type Repository interface {
	MembershipRepository
	GetIdentityByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	CreateIdentity(ctx context.Context, rec *IdentityRecord) error
	ListMemberships(ctx context.Context, userID int64) ([]MembershipRecord, error)
	GetRoleByName(ctx context.Context, name string) (*RoleRecord, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error)
	Authenticate(ctx context.Context, dto LoginDTO) (*AuthResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	Me(ctx context.Context, identity *Identity) (*MeResponse, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	bcryptCost     int
	ownerRoleName  string
}

func NewService(repo Repository, tokenGen TokenGenerator, bcryptCost int, ownerRoleName string) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if ownerRoleName == "" {
		ownerRoleName = internal.DefaultOwnerRoleName
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		ownerRoleName:  ownerRoleName,
	}
}

// Register creates a global identity. The owner role is recorded as its
// legacy role so the first company can be bootstrapped before any
// membership exists.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetIdentityByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailExists
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	rec := &IdentityRecord{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
	}

	ownerRole, err := s.repo.GetRoleByName(ctx, s.ownerRoleName)
	if err != nil {
		return nil, internal.NewInternalError("failed to load owner role", err)
	}
	if ownerRole != nil {
		rec.RoleID = &ownerRole.ID
	} else {
		logger.From(ctx).Warn("owner role not found, registering without legacy role", "role", s.ownerRoleName)
	}

	if err := s.repo.CreateIdentity(ctx, rec); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("identity registered", slog.Int64("user_id", rec.ID))

	return s.issue(rec, []MembershipRecord{})
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetIdentityByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load identity", err)
	}
	if rec == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if !rec.IsActive {
		return nil, internal.ErrUserInactive
	}

	memberships, err := s.repo.ListMemberships(ctx, rec.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load memberships", err)
	}
	return s.issue(rec, memberships)
}

func (s *Service) issue(rec *IdentityRecord, memberships []MembershipRecord) (*AuthResult, error) {
	tokens, err := s.tokensFor(rec.ID, rec.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AuthTokens:  tokens,
		User:        UserView{ID: rec.ID, Email: rec.Email, Name: rec.Name},
		Memberships: toMembershipViews(memberships),
	}, nil
}

func (s *Service) tokensFor(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	rec, err := s.repo.GetIdentityByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to load identity", err)
	}
	if rec == nil {
		return AuthTokens{}, internal.ErrIdentityNotFound
	}
	if !rec.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.tokensFor(rec.ID, rec.Email)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) Me(ctx context.Context, identity *Identity) (*MeResponse, error) {
	memberships, err := s.repo.ListMemberships(ctx, identity.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load memberships", err)
	}
	return &MeResponse{
		User:        UserView{ID: identity.ID, Email: identity.Email, Name: identity.Name},
		TenantID:    identity.TenantID,
		Role:        identity.Role,
		Memberships: toMembershipViews(memberships),
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
