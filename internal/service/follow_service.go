package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/repository"
)

type FollowService interface {
	ToggleFollow(ctx context.Context, userID, discussionID uuid.UUID) (*dto.ToggleResponse, error)
}

type followService struct {
	followRepo     repository.FollowRepository
	discussionRepo repository.DiscussionRepository
}

func NewFollowService(followRepo repository.FollowRepository, discussionRepo repository.DiscussionRepository) FollowService {
	return &followService{
		followRepo:     followRepo,
		discussionRepo: discussionRepo,
	}
}

func (s *followService) ToggleFollow(ctx context.Context, userID, discussionID uuid.UUID) (*dto.ToggleResponse, error) {
	if _, err := s.discussionRepo.FindByID(ctx, discussionID); err != nil {
		return nil, err
	}

	active, err := s.followRepo.Toggle(ctx, userID, discussionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Lost a double-submit race; report the winner's state
		active, err = s.followRepo.IsFollowing(ctx, userID, discussionID)
		if err != nil {
			return nil, err
		}
	}

	count, err := s.followRepo.Count(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	return &dto.ToggleResponse{Active: active, Count: count}, nil
}
