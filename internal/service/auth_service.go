package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/notify-service/internal/auth"
	"github.com/spec-kit/notify-service/internal/domain"
	"github.com/spec-kit/notify-service/internal/repository"
	apperrors "github.com/spec-kit/notify-service/pkg/util"
)

// AuthService coordinates account registration, login and token issuance.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokenMgr *auth.TokenManager, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokenMgr: tokenMgr, bcryptCost: bcryptCost, logger: logger}
}

// TokenManager exposes the issuer for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new account and issues its first bearer token.
func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (*domain.UserRecord, string, time.Time, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already registered", nil)
	} else if err != pgx.ErrNoRows {
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.UserRecord{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         "user",
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("user create failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates a user and issues a bearer token. Unknown users and
// wrong passwords both surface as the same unauthorized error so callers
// cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.UserRecord, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Error("user lookup failed", zap.Error(err))
			return nil, "", time.Time{}, apperrors.NewInternalError(err)
		}
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}
