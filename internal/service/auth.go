package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=buyer artist"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in user together with the token for the auth cookie.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	role := domain.RoleBuyer
	if in.Role != "" {
		role = domain.Role(in.Role)
	}
	if !role.SelfAssignable() {
		return nil, invalid("role must be buyer or artist")
	}

	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// CreateAdmin bootstraps an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := validateInput(RegisterInput{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}
	return s.createUser(ctx, name, email, password, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         clean(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("email is already registered")
		}
		s.log.Error("repo create user error", zap.Error(err))
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", role.String()))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	badCredentials := &Error{Kind: KindUnauthorized, Message: "invalid email or password"}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, badCredentials
	}
	if err != nil {
		s.log.Error("repo get user by email error", zap.Error(err))
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, badCredentials
		}
		return nil, err
	}
	return s.session(user)
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, p Principal) (*domain.User, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		// account removed after the token was issued
		return nil, ErrUnauthorized
	}
	if err != nil {
		s.log.Error("repo get user error", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
