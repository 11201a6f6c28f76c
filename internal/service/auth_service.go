package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"task-rooms-api/internal/auth"
	"task-rooms-api/internal/models"
	"task-rooms-api/internal/store"
)

// TokenIssuer signs access tokens for users.
type TokenIssuer interface {
	GenerateToken(userID uint, name string) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token string       `json:"access_token"`
	User  *models.User `json:"user"`
}

// AuthService handles account registration and the password and Google
// login flows.
type AuthService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens TokenIssuer
	google auth.OAuthProvider
	logger *slog.Logger
}

// NewAuthService wires the account flows. google may be nil, which disables
// Google login.
func NewAuthService(users store.UserStore, hasher auth.PasswordHasher, tokens TokenIssuer, google auth.OAuthProvider, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		google: google,
		logger: logger.With("component", "auth_service"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, newError(ErrValidation, "Email and password are required")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: digest,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "User already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrValidation, "Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.HasPassword() {
		return nil, newError(ErrValidation, "This account was created using Google. Please log in with Google.")
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, newError(ErrInvalidCredentials, "Invalid password")
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return s.issue(user)
}

// GoogleEnabled reports whether a Google client is configured.
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil
}

// GoogleAuthURL returns the consent page carrying state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", newError(ErrNotFound, "Google login is not configured")
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleLogin exchanges an authorization code, creating the account on first
// sign-in.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*Session, error) {
	if s.google == nil {
		return nil, newError(ErrNotFound, "Google login is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, newError(ErrValidation, "Missing authorization code")
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google exchange failed", "error", err)
		return nil, newError(ErrInvalidCredentials, "Google authentication failed")
	}

	email := normalizeEmail(profile.Email)
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		created := &models.User{Name: profile.Name, Email: email}
		err := s.users.CreateUser(ctx, created)
		if errors.Is(err, store.ErrDuplicate) {
			// a concurrent first sign-in created the account
			user, err = s.users.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("find user: %w", err)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("create google user: %w", err)
		}
		user = created
		s.logger.Info("user created from google profile", "user_id", user.ID)
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
