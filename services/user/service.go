package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskhive/config"
	"taskhive/database/repository"
	userRepo "taskhive/database/repository/user"
	"taskhive/models"
	"taskhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Denylist TokenDenylist
	TokenTTL time.Duration
	Logger   *zap.Logger
}

func (s *DefaultUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}
	role := req.Role
	if config.IsAdminEmail(req.Email) {
		role = models.RoleAdmin
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("a user with this email already exists")
		}
		return nil, utils.Internal("failed to create user", err)
	}

	s.Logger.Info("user registered", zap.String("userId", u.ID), zap.String("role", string(u.Role)))
	return s.issue(u)
}

func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, utils.Internal("authentication failed, please try again", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}
	return s.issue(u)
}

// Logout revokes token for the rest of its lifetime.
func (s *DefaultUserService) Logout(ctx context.Context, token string) error {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return utils.Unauthorized("invalid token")
	}
	ttl := time.Until(claims.ExpiresAt)
	if err := s.Denylist.Revoke(ctx, utils.HashToken(token), ttl); err != nil {
		return utils.Internal("failed to revoke token", err)
	}
	s.Logger.Info("user logged out", zap.String("userId", claims.Subject))
	return nil
}

func (s *DefaultUserService) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return models.Actor{}, utils.Unauthorized("invalid token")
	}
	role := models.Role(claims.Role)
	switch role {
	case models.RoleCustomer, models.RoleProvider, models.RoleAdmin:
	default:
		return models.Actor{}, utils.Unauthorized("invalid token")
	}

	revoked, err := s.Denylist.IsRevoked(ctx, utils.HashToken(token))
	if err != nil {
		// Redis trouble must not lock every user out.
		s.Logger.Warn("token denylist unavailable", zap.Error(err))
	}
	if revoked {
		return models.Actor{}, utils.Unauthorized("token has been revoked")
	}
	return models.Actor{ID: claims.Subject, Role: role}, nil
}

func (s *DefaultUserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("user")
	}
	if err != nil {
		return nil, utils.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.Validation("validation failed", map[string]any{"fcmToken": "is required"})
	}
	err := s.Repo.UpdateFCMToken(ctx, userID, token)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound("user")
	}
	if err != nil {
		return utils.Internal("failed to update FCM token", err)
	}
	return nil
}

// FCMToken implements the push sink's token lookup. A missing user or token
// yields an empty string.
func (s *DefaultUserService) FCMToken(ctx context.Context, userID string) (string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.FCMToken, nil
}

func (s *DefaultUserService) issue(u *models.User) (*models.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, err := utils.GenerateToken(u.ID, u.Email, string(u.Role), ttl)
	if err != nil {
		return nil, utils.Internal("failed to issue token", err)
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
