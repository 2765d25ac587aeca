package service

import (
	"context"
	"log/slog"
	"strings"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/middleware/auth"
)

type UserService interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*models.User, error)
	CloseAccount(ctx context.Context, userID, password string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes nickname, avatar and password. A new password is only
// accepted together with the correct current one.
func (s *userService) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		if nickname == "" {
			return nil, validationError("nickname must not be blank")
		}
		user.Nickname = nickname
	}
	if in.ProfileImage != nil {
		img := strings.TrimSpace(*in.ProfileImage)
		if img == "" {
			user.ProfileImage = nil
		} else {
			user.ProfileImage = &img
		}
	}
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, validationError("current password is required to set a new one")
		}
		if err := auth.VerifyPassword(user.Password, in.CurrentPassword); err != nil {
			return nil, ErrWrongPassword
		}
		hashed, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, validationError("password is too long")
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CloseAccount deletes the user after re-checking the password. Their reviews
// and comments stay and render without a name.
func (s *userService) CloseAccount(ctx context.Context, userID, password string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return ErrWrongPassword
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	s.logger.Info("account closed", "user_id", userID)
	return nil
}
