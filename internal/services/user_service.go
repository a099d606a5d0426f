package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"timber-backend/internal/auth"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
)

type UserService struct {
	Repo       repositories.UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(repo repositories.UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// Login checks email and password and issues a session token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, newError(KindValidation, "email and password are required")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindUnauthenticated, "invalid email or password")
		}
		return nil, storeError(KindQueryFailed, "failed to look up user", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, newError(KindUnauthenticated, "invalid email or password")
	}
	if !user.IsActive {
		return nil, newError(KindForbidden, "account is disabled")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, &Error{Kind: KindQueryFailed, Message: "failed to issue token", Err: err}
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// GetUser returns the user behind a session
func (s *UserService) GetUser(ctx context.Context, actor Actor) (*models.User, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	user, err := s.Repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(KindQueryFailed, "failed to load user", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no user has its email yet
func (s *UserService) EnsureAdmin(ctx context.Context, orgID int, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		OrganisationID: orgID,
		Name:           "Administrator",
		Email:          email,
		PasswordHash:   hash,
		Role:           models.RoleAdmin,
	}
	if err := s.Repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	zap.L().Info("bootstrap admin created", zap.String("email", email), zap.Int("org_id", orgID))
	return nil
}
