package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	"github.com/menahealth/medflow-api/pkg/auth"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
	logger *logger.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger *logger.Logger) *Service {
	return &Service{
		users:  users,
		jwtSvc: jwtSvc,
		hasher: hasher,
		logger: logger,
	}
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", model.ErrInvalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", model.ErrInvalidCredentials)
	}
	if !user.Approved {
		return nil, apperrors.Forbidden("account pending approval", nil)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal("failed to generate token", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "account_type", user.AccountType)
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Register creates a staff account. Doctors must declare at least one
// specialty; specialty values outside the enumerated list are rejected.
// Accounts start unapproved and cannot log in until an admin flips the
// flag.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if existing, _ := s.users.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	if req.AccountType == model.AccountTypeDoctor && len(req.Specialties) == 0 {
		return nil, apperrors.BadRequest("doctors must declare at least one specialty", nil)
	}
	for _, sp := range req.Specialties {
		if !model.ValidSpecialty(sp) {
			return nil, apperrors.BadRequest("unknown specialty: "+string(sp), nil)
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AccountType:  req.AccountType,
		Specialties:  req.Specialties,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "account_type", user.AccountType)
	return user, nil
}

// ValidateToken parses the bearer token into session claims.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}
