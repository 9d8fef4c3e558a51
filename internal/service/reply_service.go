package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/pkg/apperror"
)

type ReplyService interface {
	CreateReply(ctx context.Context, userID, discussionID uuid.UUID, req dto.CreateReplyRequest) (*dto.ReplyResponse, error)
	GetReplyTree(ctx context.Context, userID *uuid.UUID, discussionID uuid.UUID, filter dto.ReplyFilter) (*dto.ReplyTreeResponse, error)
	GetReplyThread(ctx context.Context, userID *uuid.UUID, replyID uuid.UUID, filter dto.ReplyFilter) (*dto.ReplyResponse, error)
	UpdateReply(ctx context.Context, userID, replyID uuid.UUID, req dto.UpdateReplyRequest) (*dto.ReplyResponse, error)
	DeleteReply(ctx context.Context, userID, replyID uuid.UUID) error
}

type replyService struct {
	replyRepo           repository.ReplyRepository
	discussionRepo      repository.DiscussionRepository
	upvoteRepo          repository.UpvoteRepository
	followRepo          repository.FollowRepository
	notificationService NotificationService
	cooldown            *Cooldown
	globalLimit         time.Duration
	replyLimit          time.Duration
}

func NewReplyService(replyRepo repository.ReplyRepository, discussionRepo repository.DiscussionRepository, upvoteRepo repository.UpvoteRepository, followRepo repository.FollowRepository, notificationService NotificationService, cooldown *Cooldown, globalLimit, replyLimit time.Duration) ReplyService {
	return &replyService{
		replyRepo:           replyRepo,
		discussionRepo:      discussionRepo,
		upvoteRepo:          upvoteRepo,
		followRepo:          followRepo,
		notificationService: notificationService,
		cooldown:            cooldown,
		globalLimit:         globalLimit,
		replyLimit:          replyLimit,
	}
}

func (s *replyService) CreateReply(ctx context.Context, userID, discussionID uuid.UUID, req dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	allowed, ttl, err := s.cooldown.Acquire(ctx, userID, "global", s.globalLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimited,
			fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()))
	}

	allowed, ttl, err = s.cooldown.Acquire(ctx, userID, "reply", s.replyLimit)
	if err != nil {
		_ = s.cooldown.Release(ctx, userID, "global")
		return nil, err
	}
	if !allowed {
		_ = s.cooldown.Release(ctx, userID, "global")
		return nil, apperror.Wrap(apperror.ErrRateLimited,
			fmt.Sprintf("you can only reply every %.0f seconds, please wait %.0f seconds", s.replyLimit.Seconds(), ttl.Seconds()))
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = s.cooldown.Release(ctx, userID, "global")
			_ = s.cooldown.Release(ctx, userID, "reply")
		}
	}()

	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	var parent *model.Reply
	if req.ParentReplyID != "" {
		pid, err := uuid.Parse(req.ParentReplyID)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "invalid parent reply id")
		}
		parent, err = s.replyRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if parent.DiscussionID != discussionID {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "parent reply belongs to another discussion")
		}
		if parent.IsDeleted {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "cannot reply to a deleted reply")
		}
		parentID = &pid
	}

	reply := &model.Reply{
		DiscussionID:  discussionID,
		UserID:        userID,
		ParentReplyID: parentID,
		Content:       req.Content,
	}

	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	creationFailed = false

	go s.notifyReplyCreated(discussion, parent, reply, userID)

	created, err := s.replyRepo.FindByID(ctx, reply.ID)
	if err == nil {
		reply = created
	}
	return s.mapToResponse(reply), nil
}

func (s *replyService) notifyReplyCreated(discussion *model.Discussion, parent *model.Reply, reply *model.Reply, actorID uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	var targetUserID uuid.UUID
	var notifType, message string

	if parent != nil {
		if parent.UserID != actorID {
			targetUserID = parent.UserID
			notifType = "reply_reply"
			message = fmt.Sprintf("Someone replied to your reply in '%s'", discussion.Title)
		}
	} else if discussion.UserID != actorID {
		targetUserID = discussion.UserID
		notifType = "reply_discussion"
		message = fmt.Sprintf("Someone replied to your discussion '%s'", discussion.Title)
	}

	if targetUserID != uuid.Nil {
		_ = s.notificationService.CreateNotification(context.Background(), &model.Notification{
			UserID:     targetUserID,
			ActorID:    actorID,
			EntityID:   reply.ID,
			EntityType: "reply",
			Type:       notifType,
			Message:    message,
		})
	}

	s.notifyFollowers(discussion, reply, actorID, targetUserID)
}

// notifyFollowers fans activity out to everyone following the discussion,
// except the actor and whoever already got a direct notification.
func (s *replyService) notifyFollowers(discussion *model.Discussion, reply *model.Reply, actorID, alreadyNotified uuid.UUID) {
	followerIDs, err := s.followRepo.FollowerIDs(context.Background(), discussion.ID)
	if err != nil {
		return
	}

	for _, followerID := range followerIDs {
		if followerID == actorID || followerID == alreadyNotified {
			continue
		}
		_ = s.notificationService.CreateNotification(context.Background(), &model.Notification{
			UserID:     followerID,
			ActorID:    actorID,
			EntityID:   reply.ID,
			EntityType: "reply",
			Type:       "followed_activity",
			Message:    fmt.Sprintf("New reply in '%s', a discussion you follow", discussion.Title),
		})
	}
}

func (s *replyService) GetReplyTree(ctx context.Context, userID *uuid.UUID, discussionID uuid.UUID, filter dto.ReplyFilter) (*dto.ReplyTreeResponse, error) {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.FindAllByDiscussionID(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	opts := ReplyTreeOptions{
		Sort:         filter.Sort,
		MaxDepth:     DefaultReplyDepth,
		BestAnswerID: discussion.BestAnswerID,
	}
	if userID != nil {
		opts.UpvotedIDs, err = s.upvotedSet(ctx, *userID, discussionID)
		if err != nil {
			return nil, err
		}
	}

	tree := BuildReplyTree(replies, opts)
	if tree == nil {
		tree = []*dto.ReplyResponse{}
	}
	return &dto.ReplyTreeResponse{Data: tree}, nil
}

func (s *replyService) GetReplyThread(ctx context.Context, userID *uuid.UUID, replyID uuid.UUID, filter dto.ReplyFilter) (*dto.ReplyResponse, error) {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}

	discussion, err := s.discussionRepo.FindByID(ctx, reply.DiscussionID)
	if err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.FindAllByDiscussionID(ctx, reply.DiscussionID)
	if err != nil {
		return nil, err
	}

	opts := ReplyTreeOptions{
		Sort:         filter.Sort,
		MaxDepth:     DefaultReplyDepth,
		BestAnswerID: discussion.BestAnswerID,
	}
	if userID != nil {
		opts.UpvotedIDs, err = s.upvotedSet(ctx, *userID, reply.DiscussionID)
		if err != nil {
			return nil, err
		}
	}

	node := BuildReplySubtree(replies, replyID, opts)
	if node == nil {
		return nil, apperror.ErrNotFound
	}
	return node, nil
}

func (s *replyService) upvotedSet(ctx context.Context, userID, discussionID uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := s.upvoteRepo.UpvotedReplyIDs(ctx, userID, discussionID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *replyService) UpdateReply(ctx context.Context, userID, replyID uuid.UUID, req dto.UpdateReplyRequest) (*dto.ReplyResponse, error) {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.IsDeleted {
		return nil, apperror.ErrNotFound
	}
	if reply.UserID != userID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only edit your own reply")
	}

	reply.Content = req.Content
	reply.IsEdited = true
	if err := s.replyRepo.Update(ctx, reply); err != nil {
		return nil, err
	}

	return s.mapToResponse(reply), nil
}

// DeleteReply soft-deletes when children exist so their position in the tree
// survives; a childless reply is removed outright.
func (s *replyService) DeleteReply(ctx context.Context, userID, replyID uuid.UUID) error {
	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.IsDeleted {
		return apperror.ErrNotFound
	}
	if reply.UserID != userID {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own reply")
	}

	hasChildren, err := s.replyRepo.HasChildren(ctx, replyID)
	if err != nil {
		return err
	}
	if hasChildren {
		return s.replyRepo.SoftDelete(ctx, reply)
	}
	return s.replyRepo.HardDeleteSubtree(ctx, reply)
}

func (s *replyService) mapToResponse(reply *model.Reply) *dto.ReplyResponse {
	node := &dto.ReplyResponse{
		ID:            reply.ID,
		ParentReplyID: reply.ParentReplyID,
		Content:       reply.Content,
		UpvoteCount:   reply.UpvoteCount,
		ReplyCount:    reply.ReplyCount,
		IsEdited:      reply.IsEdited,
		CreatedAt:     reply.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     reply.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if reply.User.Username != "" {
		node.Author = &dto.AuthorResponse{
			Username:  reply.User.Username,
			FullName:  reply.User.FullName,
			Practice:  reply.User.Practice,
			AvatarURL: reply.User.AvatarURL,
		}
	}
	return node
}
