package service

import (
	"context"
	"errors"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UpdateProfileInput struct {
	Name        *string             `json:"name" validate:"omitempty,min=2,max=80"`
	Bio         *string             `json:"bio" validate:"omitempty,max=2000"`
	Avatar      *string             `json:"avatar" validate:"omitempty,url"`
	Location    *string             `json:"location" validate:"omitempty,max=120"`
	Specialties []string            `json:"specialties" validate:"omitempty,max=20,dive,max=60"`
	SocialLinks *domain.SocialLinks `json:"social_links"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type UserService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		s.log.Error("repo get user error", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.PublicProfile, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.get(ctx, uid)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, p Principal, in UpdateProfileInput) (*domain.User, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = clean(*in.Name)
	}
	if in.Bio != nil {
		user.Bio = clean(*in.Bio)
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Location != nil {
		user.Location = clean(*in.Location)
	}
	if in.Specialties != nil {
		user.Specialties = cleanAll(in.Specialties)
	}
	if in.SocialLinks != nil {
		user.SocialLinks = *in.SocialLinks
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("repo update user error", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, p Principal, in ChangePasswordInput) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, in.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return invalid("current password is incorrect")
		}
		return err
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.log.Error("repo update password error", zap.Error(err))
		return err
	}
	return nil
}

func (s *UserService) ListArtists(ctx context.Context, search string, page repository.Page) ([]domain.PublicProfile, int64, error) {
	users, total, err := s.users.List(ctx, repository.UserFilter{Role: domain.RoleArtist, Search: search, Page: page})
	if err != nil {
		s.log.Error("repo list artists error", zap.Error(err))
		return nil, 0, err
	}
	out := make([]domain.PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, total, nil
}

func (s *UserService) ListUsers(ctx context.Context, p Principal, role, search string, page repository.Page) ([]domain.User, int64, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.UserFilter{Search: search, Page: page}
	if role != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			return nil, 0, invalid("unknown role %q", role)
		}
		filter.Role = r
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list users error", zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) SetRole(ctx context.Context, p Principal, id, role string) (*domain.User, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	uid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, invalid("unknown role %q", role)
	}
	if uid == p.UserID {
		return nil, invalid("you cannot change your own role")
	}
	if err := s.users.SetRole(ctx, uid, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user not found")
		}
		s.log.Error("repo set role error", zap.Error(err))
		return nil, err
	}
	s.log.Info("user role changed", zap.String("user_id", uid.Hex()), zap.String("role", r.String()),
		zap.String("by", p.UserID.Hex()))
	return s.get(ctx, uid)
}

func (s *UserService) DeleteUser(ctx context.Context, p Principal, id string) error {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	uid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if uid == p.UserID {
		return invalid("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user not found")
		}
		s.log.Error("repo delete user error", zap.Error(err))
		return err
	}
	return nil
}
