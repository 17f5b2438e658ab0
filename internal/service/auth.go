package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recipebox/recipebox-go/internal/crypto"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPhoneRequired      = errors.New("phone is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidRole        = errors.New("role must be customer or caterer")
	ErrPhoneTaken         = errors.New("phone already registered")

	ErrUnauthenticated = errors.New("invalid or expired token")
	ErrUserGone        = errors.New("the user belonging to this token no longer exists")
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	repo      *repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account. The returned profile never carries the
// password hash.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := validateRegistration(req); err != nil {
		return model.UserResponse{}, err
	}

	// The unique index still catches a concurrent registration of the same phone.
	if _, err := s.repo.GetByPhone(ctx, req.Phone); err == nil {
		return model.UserResponse{}, ErrPhoneTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.UserResponse{}, fmt.Errorf("checking phone: %w", err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return model.UserResponse{}, ErrPasswordTooLong
		}
		return model.UserResponse{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if req.Role == model.RoleCaterer {
		user.BusinessName = strings.TrimSpace(req.BusinessName)
		user.BusinessAddress = strings.TrimSpace(req.BusinessAddress)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return model.UserResponse{}, ErrPhoneTaken
		}
		return model.UserResponse{}, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	return ToUserResponse(user), nil
}

// Login authenticates a user by phone and password and issues a session token.
// Unknown phones and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.BurnVerify(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("signing token: %w", err)
	}

	return model.AuthResponse{
		Message: "login successful",
		Token:   token,
		User:    ToUserResponse(user),
	}, nil
}

// Authenticate verifies a bearer token and resolves the current user record.
// The signature and expiry are checked before the store is consulted.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("resolving token user: %w", err)
	}

	return user, nil
}

func validateRegistration(req model.RegisterRequest) error {
	switch {
	case req.Username == "":
		return ErrUsernameRequired
	case req.Phone == "":
		return ErrPhoneRequired
	case req.Password == "":
		return ErrPasswordRequired
	case len(req.Password) > crypto.MaxPasswordLength:
		return ErrPasswordTooLong
	case !req.Role.Valid():
		return ErrInvalidRole
	}
	return nil
}

// ToUserResponse projects a user onto its public profile.
func ToUserResponse(u *model.User) model.UserResponse {
	return model.UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Phone:           u.Phone,
		Role:            u.Role,
		BusinessName:    u.BusinessName,
		BusinessAddress: u.BusinessAddress,
		CreatedAt:       u.CreatedAt,
	}
}
