package service

import (
	"context"

	"github.com/google/uuid"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.UserProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*dto.UserProfileResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapUserToProfile(user), nil
}

func (s *userService) GetProfileByUsername(ctx context.Context, username string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return mapUserToProfile(user), nil
}

func mapUserToProfile(user *model.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		FullName:     user.FullName,
		EnrollmentNo: user.EnrollmentNo,
		Practice:     user.Practice,
		AvatarURL:    user.AvatarURL,
		CreatedAt:    user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
