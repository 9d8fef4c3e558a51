package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
)

type UpvoteService interface {
	ToggleDiscussionUpvote(ctx context.Context, userID, discussionID uuid.UUID) (*dto.ToggleResponse, error)
	ToggleReplyUpvote(ctx context.Context, userID, replyID uuid.UUID) (*dto.ToggleResponse, error)
}

type upvoteService struct {
	upvoteRepo          repository.UpvoteRepository
	discussionRepo      repository.DiscussionRepository
	replyRepo           repository.ReplyRepository
	notificationService NotificationService
}

func NewUpvoteService(upvoteRepo repository.UpvoteRepository, discussionRepo repository.DiscussionRepository, replyRepo repository.ReplyRepository, notificationService NotificationService) UpvoteService {
	return &upvoteService{
		upvoteRepo:          upvoteRepo,
		discussionRepo:      discussionRepo,
		replyRepo:           replyRepo,
		notificationService: notificationService,
	}
}

func (s *upvoteService) ToggleDiscussionUpvote(ctx context.Context, userID, discussionID uuid.UUID) (*dto.ToggleResponse, error) {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.toggle(ctx, userID, discussionID, model.UpvoteTargetDiscussion)
	if err != nil {
		return nil, err
	}

	if resp.Active && discussion.UserID != userID {
		s.notifyAsync(&model.Notification{
			UserID:     discussion.UserID,
			ActorID:    userID,
			EntityID:   discussion.ID,
			EntityType: "discussion",
			Type:       "upvote",
			Message:    fmt.Sprintf("Someone upvoted your discussion '%s'", discussion.Title),
		})
	}

	return resp, nil
}

func (s *upvoteService) ToggleReplyUpvote(ctx context.Context, userID, replyID uuid.UUID) (*dto.ToggleResponse, error) {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}

	resp, err := s.toggle(ctx, userID, replyID, model.UpvoteTargetReply)
	if err != nil {
		return nil, err
	}

	if resp.Active && reply.UserID != userID && !reply.IsDeleted {
		s.notifyAsync(&model.Notification{
			UserID:     reply.UserID,
			ActorID:    userID,
			EntityID:   reply.ID,
			EntityType: "reply",
			Type:       "upvote",
			Message:    "Someone upvoted your reply",
		})
	}

	return resp, nil
}

// toggle flips the link row and reports the resulting state. A lost race
// against the unique index is not an error: the first writer won, so the
// current state is reread and returned as if this call were the no-op.
func (s *upvoteService) toggle(ctx context.Context, userID, targetID uuid.UUID, targetType string) (*dto.ToggleResponse, error) {
	active, err := s.upvoteRepo.Toggle(ctx, userID, targetID, targetType)
	if err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		active, err = s.upvoteRepo.HasUpvoted(ctx, userID, targetID, targetType)
		if err != nil {
			return nil, err
		}
	}

	count, err := s.upvoteRepo.Count(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}

	return &dto.ToggleResponse{Active: active, Count: count}, nil
}

func (s *upvoteService) notifyAsync(notification *model.Notification) {
	if s.notificationService == nil {
		return
	}
	go func() {
		_ = s.notificationService.CreateNotification(context.Background(), notification)
	}()
}
