package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"nyayanet.in/forum/internal/repository"
)

const pendingViewsKey = "pending:discussion_views"

// ViewService buffers view counts in redis and flushes them to the database
// on a timer, so a hot discussion page does not turn into a write per read.
// Without redis it falls back to direct increments.
type ViewService interface {
	IncrementView(ctx context.Context, discussionID, userID uuid.UUID) error
	StartViewSyncWorker(ctx context.Context, interval time.Duration)
}

type viewService struct {
	redisClient    *redis.Client
	discussionRepo repository.DiscussionRepository
}

func NewViewService(redisClient *redis.Client, discussionRepo repository.DiscussionRepository) ViewService {
	return &viewService{
		redisClient:    redisClient,
		discussionRepo: discussionRepo,
	}
}

func (s *viewService) IncrementView(ctx context.Context, discussionID, userID uuid.UUID) error {
	if s.redisClient == nil {
		return s.discussionRepo.AddViews(ctx, discussionID, 1)
	}

	// One counted view per user per discussion per hour
	userViewKey := fmt.Sprintf("discussion:user_view:%s:%s", discussionID, userID)
	exists, err := s.redisClient.Exists(ctx, userViewKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check user view: %w", err)
	}
	if exists == 1 {
		return nil
	}

	viewKey := fmt.Sprintf("discussion:views:%s", discussionID)
	if _, err := s.redisClient.Incr(ctx, viewKey).Result(); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}
	if _, err := s.redisClient.SAdd(ctx, pendingViewsKey, discussionID.String()).Result(); err != nil {
		return fmt.Errorf("failed to add to pending: %w", err)
	}
	if _, err := s.redisClient.SetEx(ctx, userViewKey, "viewed", time.Hour).Result(); err != nil {
		return fmt.Errorf("failed to set user view: %w", err)
	}

	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	discussionIDs, err := s.redisClient.SMembers(ctx, pendingViewsKey).Result()
	if err != nil {
		log.Printf("error getting pending discussion views: %v", err)
		return
	}
	if len(discussionIDs) == 0 {
		return
	}

	for _, idStr := range discussionIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			s.redisClient.SRem(ctx, pendingViewsKey, idStr)
			continue
		}

		viewKey := fmt.Sprintf("discussion:views:%s", idStr)
		countStr, err := s.redisClient.GetDel(ctx, viewKey).Result()
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			s.redisClient.SRem(ctx, pendingViewsKey, idStr)
			continue
		}

		if err := s.discussionRepo.AddViews(ctx, id, count); err != nil {
			log.Printf("failed to sync views for discussion %s: %v", idStr, err)
			// Put the count back so it is retried next tick
			s.redisClient.IncrBy(ctx, viewKey, int64(count))
			continue
		}

		s.redisClient.SRem(ctx, pendingViewsKey, idStr)
	}
}

func (s *viewService) StartViewSyncWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		}
	}
}
