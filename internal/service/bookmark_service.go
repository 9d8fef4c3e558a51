package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/pkg/apperror"
)

type BookmarkService interface {
	ToggleBookmark(ctx context.Context, userID uuid.UUID, req dto.BookmarkToggleRequest) (*dto.ToggleResponse, error)
}

type bookmarkService struct {
	bookmarkRepo   repository.BookmarkRepository
	discussionRepo repository.DiscussionRepository
	postRepo       repository.PostRepository
}

func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, discussionRepo repository.DiscussionRepository, postRepo repository.PostRepository) BookmarkService {
	return &bookmarkService{
		bookmarkRepo:   bookmarkRepo,
		discussionRepo: discussionRepo,
		postRepo:       postRepo,
	}
}

func (s *bookmarkService) ToggleBookmark(ctx context.Context, userID uuid.UUID, req dto.BookmarkToggleRequest) (*dto.ToggleResponse, error) {
	if !model.ValidBookmarkEntity(req.EntityType) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "unknown bookmark entity type")
	}
	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "invalid entity id")
	}

	// Discussions and posts live here and must exist; AI results and law
	// sections belong to other services and are taken on trust.
	switch req.EntityType {
	case model.BookmarkEntityDiscussion:
		if _, err := s.discussionRepo.FindByID(ctx, entityID); err != nil {
			return nil, err
		}
	case model.BookmarkEntityPost:
		exists, err := s.postRepo.Exists(ctx, entityID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperror.ErrNotFound
		}
	}

	active, err := s.bookmarkRepo.Toggle(ctx, userID, entityID, req.EntityType)
	if err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		active, err = s.bookmarkRepo.IsSaved(ctx, userID, entityID, req.EntityType)
		if err != nil {
			return nil, err
		}
	}

	count, err := s.bookmarkRepo.Count(ctx, entityID, req.EntityType)
	if err != nil {
		return nil, err
	}

	return &dto.ToggleResponse{Active: active, Count: count}, nil
}
