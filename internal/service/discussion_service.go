package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"nyayanet.in/forum/internal/dto"
	"nyayanet.in/forum/internal/model"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/pkg/apperror"
)

type DiscussionService interface {
	CreateDiscussion(ctx context.Context, userID uuid.UUID, req dto.CreateDiscussionRequest) (*dto.DiscussionResponse, error)
	GetDiscussion(ctx context.Context, userID *uuid.UUID, discussionID uuid.UUID) (*dto.DiscussionResponse, error)
	GetAllDiscussions(ctx context.Context, filter dto.DiscussionFilter) (*dto.PaginatedDiscussionResponse, error)
	UpdateDiscussion(ctx context.Context, userID, discussionID uuid.UUID, req dto.UpdateDiscussionRequest) (*dto.DiscussionResponse, error)
	DeleteDiscussion(ctx context.Context, userID, discussionID uuid.UUID) error
	MarkBestAnswer(ctx context.Context, userID, discussionID, replyID uuid.UUID) (*dto.DiscussionResponse, error)
}

type discussionService struct {
	discussionRepo      repository.DiscussionRepository
	replyRepo           repository.ReplyRepository
	upvoteRepo          repository.UpvoteRepository
	followRepo          repository.FollowRepository
	bookmarkRepo        repository.BookmarkRepository
	searchService       SearchService
	viewService         ViewService
	notificationService NotificationService
	cooldown            *Cooldown
	globalLimit         time.Duration
}

func NewDiscussionService(
	discussionRepo repository.DiscussionRepository,
	replyRepo repository.ReplyRepository,
	upvoteRepo repository.UpvoteRepository,
	followRepo repository.FollowRepository,
	bookmarkRepo repository.BookmarkRepository,
	searchService SearchService,
	viewService ViewService,
	notificationService NotificationService,
	cooldown *Cooldown,
	globalLimit time.Duration,
) DiscussionService {
	return &discussionService{
		discussionRepo:      discussionRepo,
		replyRepo:           replyRepo,
		upvoteRepo:          upvoteRepo,
		followRepo:          followRepo,
		bookmarkRepo:        bookmarkRepo,
		searchService:       searchService,
		viewService:         viewService,
		notificationService: notificationService,
		cooldown:            cooldown,
		globalLimit:         globalLimit,
	}
}

func (s *discussionService) CreateDiscussion(ctx context.Context, userID uuid.UUID, req dto.CreateDiscussionRequest) (*dto.DiscussionResponse, error) {
	if !model.ValidCategory(req.Category) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "unknown legal category")
	}
	if req.DiscussionType == "" {
		req.DiscussionType = model.DiscussionTypeGeneral
	}
	if !model.ValidDiscussionType(req.DiscussionType) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "unknown discussion type")
	}

	allowed, ttl, err := s.cooldown.Acquire(ctx, userID, "global", s.globalLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimited,
			fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()))
	}

	discussion := &model.Discussion{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		DiscussionType: req.DiscussionType,
		Tags:           req.Tags,
	}

	if err := s.discussionRepo.Create(ctx, discussion); err != nil {
		_ = s.cooldown.Release(ctx, userID, "global")
		return nil, err
	}

	s.indexAsync(discussion.ID)

	created, err := s.discussionRepo.FindByID(ctx, discussion.ID)
	if err == nil {
		discussion = created
	}
	return s.mapToResponse(discussion, false, false, false), nil
}

func (s *discussionService) GetDiscussion(ctx context.Context, userID *uuid.UUID, discussionID uuid.UUID) (*dto.DiscussionResponse, error) {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}

	var hasUpvoted, isFollowing, isSaved bool
	if userID != nil {
		hasUpvoted, _ = s.upvoteRepo.HasUpvoted(ctx, *userID, discussionID, model.UpvoteTargetDiscussion)
		isFollowing, _ = s.followRepo.IsFollowing(ctx, *userID, discussionID)
		isSaved, _ = s.bookmarkRepo.IsSaved(ctx, *userID, discussionID, model.BookmarkEntityDiscussion)

		if s.viewService != nil {
			if err := s.viewService.IncrementView(ctx, discussionID, *userID); err != nil {
				log.Printf("failed to count view for discussion %s: %v", discussionID, err)
			}
		}
	}

	return s.mapToResponse(discussion, hasUpvoted, isFollowing, isSaved), nil
}

func (s *discussionService) GetAllDiscussions(ctx context.Context, filter dto.DiscussionFilter) (*dto.PaginatedDiscussionResponse, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}

	var discussions []*model.Discussion
	var total int64
	var err error

	if filter.Search != "" && s.searchService != nil {
		discussions, total, err = s.searchDiscussions(ctx, filter)
	} else {
		discussions, total, err = s.discussionRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	data := make([]dto.DiscussionResponse, 0, len(discussions))
	for _, d := range discussions {
		data = append(data, *s.mapToResponse(d, false, false, false))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &dto.PaginatedDiscussionResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

// searchDiscussions resolves the meilisearch hit order against the database,
// keeping the index's ranking.
func (s *discussionService) searchDiscussions(ctx context.Context, filter dto.DiscussionFilter) ([]*model.Discussion, int64, error) {
	ids, total, err := s.searchService.SearchDiscussions(filter.Search, filter.Page, filter.Limit)
	if err != nil {
		log.Printf("meilisearch unavailable, falling back to database search: %v", err)
		return s.discussionRepo.FindAll(ctx, filter)
	}
	if len(ids) == 0 {
		return nil, 0, nil
	}

	found, err := s.discussionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uuid.UUID]*model.Discussion, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}

	ordered := make([]*model.Discussion, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered, total, nil
}

func (s *discussionService) UpdateDiscussion(ctx context.Context, userID, discussionID uuid.UUID, req dto.UpdateDiscussionRequest) (*dto.DiscussionResponse, error) {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.UserID != userID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only update your own discussion")
	}
	if !model.ValidCategory(req.Category) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "unknown legal category")
	}

	discussion.Title = req.Title
	discussion.Description = req.Description
	discussion.Category = req.Category
	discussion.Tags = req.Tags

	if err := s.discussionRepo.Update(ctx, discussion); err != nil {
		return nil, err
	}

	s.indexAsync(discussion.ID)

	return s.mapToResponse(discussion, false, false, false), nil
}

func (s *discussionService) DeleteDiscussion(ctx context.Context, userID, discussionID uuid.UUID) error {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return err
	}
	if discussion.UserID != userID {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own discussion")
	}

	if err := s.discussionRepo.Delete(ctx, discussionID); err != nil {
		return err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.DeleteDiscussion(discussionID.String()); err != nil {
				log.Printf("failed to remove discussion %s from search index: %v", discussionID, err)
			}
		}()
	}
	return nil
}

// MarkBestAnswer is the one-way OPEN to RESOLVED transition. Only the
// discussion owner may trigger it, and the chosen reply must be a live reply
// of that discussion.
func (s *discussionService) MarkBestAnswer(ctx context.Context, userID, discussionID, replyID uuid.UUID) (*dto.DiscussionResponse, error) {
	discussion, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.UserID != userID {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the discussion owner can mark a best answer")
	}

	reply, err := s.replyRepo.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.DiscussionID != discussionID {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "reply belongs to another discussion")
	}
	if reply.IsDeleted {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "cannot mark a deleted reply as best answer")
	}

	if err := s.discussionRepo.MarkResolved(ctx, discussionID, replyID); err != nil {
		return nil, err
	}

	if s.notificationService != nil && reply.UserID != userID {
		go func() {
			_ = s.notificationService.CreateNotification(context.Background(), &model.Notification{
				UserID:     reply.UserID,
				ActorID:    userID,
				EntityID:   reply.ID,
				EntityType: "reply",
				Type:       "best_answer",
				Message:    fmt.Sprintf("Your reply was marked as the best answer in '%s'", discussion.Title),
			})
		}()
	}

	updated, err := s.discussionRepo.FindByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	return s.mapToResponse(updated, false, false, false), nil
}

func (s *discussionService) indexAsync(discussionID uuid.UUID) {
	if s.searchService == nil {
		return
	}
	go func() {
		discussion, err := s.discussionRepo.FindByID(context.Background(), discussionID)
		if err != nil {
			return
		}
		if err := s.searchService.IndexDiscussion(discussion); err != nil {
			log.Printf("failed to index discussion %s: %v", discussionID, err)
		}
	}()
}

func (s *discussionService) mapToResponse(d *model.Discussion, hasUpvoted, isFollowing, isSaved bool) *dto.DiscussionResponse {
	resp := &dto.DiscussionResponse{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		DiscussionType: d.DiscussionType,
		Tags:           d.Tags,
		ReplyCount:     d.ReplyCount,
		UpvoteCount:    d.UpvoteCount,
		SaveCount:      d.SaveCount,
		FollowerCount:  d.FollowerCount,
		ViewCount:      d.ViewCount,
		IsResolved:     d.IsResolved,
		BestAnswerID:   d.BestAnswerID,
		HasUpvoted:     hasUpvoted,
		IsFollowing:    isFollowing,
		IsSaved:        isSaved,
		CreatedAt:      d.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      d.UpdatedAt.Format("2006-01-02 15:04:05"),
		LastActivityAt: d.LastActivityAt.Format("2006-01-02 15:04:05"),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if d.User.Username != "" {
		resp.Author = &dto.AuthorResponse{
			Username:  d.User.Username,
			FullName:  d.User.FullName,
			Practice:  d.User.Practice,
			AvatarURL: d.User.AvatarURL,
		}
	}
	return resp
}
