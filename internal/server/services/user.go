// Package services contains the server-side business logic: authentication,
// timeline and child CRUD with ownership checks, image storage and
// import/export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/server/auth"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
)

const invalidCredentials = "Invalid username or password"

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService registers users, checks credentials and mints tokens. Tokens
// are stateless; nothing about a session is stored server-side.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := checkStruct(in, "Username, email, and password are required"); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByUsername(ctx, in.Username)
	if err == nil {
		return nil, common.WithMessage(common.ErrorConflict, "Username already exists")
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.WithMessage(common.ErrorConflict, "Username or email already exists")
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login answers with the same error whether the user is unknown or the
// password is wrong.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := checkStruct(in, "Username and password are required"); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithMessage(common.ErrorUnauthorized, invalidCredentials)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.WithMessage(common.ErrorUnauthorized, invalidCredentials)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	if !validID(userID) {
		return nil, common.WithMessage(common.ErrorNotFound, "User not found")
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithMessage(common.ErrorNotFound, "User not found")
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return user, nil
}

// Refresh mints a new token for an already verified caller.
func (s *UserService) Refresh(_ context.Context, id auth.Identity) (string, error) {
	token, err := auth.GenerateToken(id, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// Verify parses a bearer token into the caller identity.
func (s *UserService) Verify(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *UserService) issue(u *models.User) (string, error) {
	token, err := auth.GenerateToken(auth.Identity{ID: u.ID, Username: u.Username}, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}
