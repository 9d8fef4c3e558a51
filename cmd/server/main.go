package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"nyayanet.in/forum/internal/bootstrap"
	"nyayanet.in/forum/internal/config"
	"nyayanet.in/forum/internal/handler"
	"nyayanet.in/forum/internal/middleware"
	"nyayanet.in/forum/internal/repository"
	"nyayanet.in/forum/internal/service"
	"nyayanet.in/forum/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDemoUser(db); err != nil {
			log.Fatalf("failed to seed demo user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
	} else {
		log.Println("REDIS_URL not set; rate limits, view buffering and realtime notifications are disabled")
	}

	var searchSvc service.SearchService
	if cfg.MeiliMasterKey != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient)
	} else {
		log.Println("MEILI_MASTER_KEY not set; full-text search falls back to the database")
	}

	userRepo := repository.NewUserRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	upvoteRepo := repository.NewUpvoteRepository(db)
	followRepo := repository.NewFollowRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	cooldown := service.NewCooldown(redisClient)

	userSvc := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userSvc)

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)

	viewSvc := service.NewViewService(redisClient, discussionRepo)

	discussionSvc := service.NewDiscussionService(
		discussionRepo, replyRepo, upvoteRepo, followRepo, bookmarkRepo,
		searchSvc, viewSvc, notificationSvc, cooldown, cfg.RateLimitGlobal,
	)
	discussionHandler := handler.NewDiscussionHandler(discussionSvc)

	replySvc := service.NewReplyService(
		replyRepo, discussionRepo, upvoteRepo, followRepo, notificationSvc,
		cooldown, cfg.RateLimitGlobal, cfg.RateLimitReply,
	)
	replyHandler := handler.NewReplyHandler(replySvc)

	upvoteSvc := service.NewUpvoteService(upvoteRepo, discussionRepo, replyRepo, notificationSvc)
	followSvc := service.NewFollowService(followRepo, discussionRepo)
	bookmarkSvc := service.NewBookmarkService(bookmarkRepo, discussionRepo, postRepo)
	reactionHandler := handler.NewReactionHandler(upvoteSvc, followSvc, bookmarkSvc)

	reconcileSvc := service.NewReconcileService(db)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/users/me", userHandler.GetMe)
		api.GET("/users/:username", userHandler.GetByUsername)

		api.POST("/discussions", discussionHandler.CreateDiscussion)
		api.GET("/discussions", discussionHandler.GetAllDiscussions)
		api.GET("/discussions/:id", discussionHandler.GetDiscussion)
		api.PUT("/discussions/:id", discussionHandler.UpdateDiscussion)
		api.DELETE("/discussions/:id", discussionHandler.DeleteDiscussion)
		api.POST("/discussions/:id/resolve", discussionHandler.ResolveDiscussion)

		api.POST("/discussions/:id/replies", replyHandler.CreateReply)
		api.GET("/discussions/:id/replies", replyHandler.GetReplyTree)
		api.GET("/replies/:id/thread", replyHandler.GetReplyThread)
		api.PUT("/replies/:id", replyHandler.UpdateReply)
		api.DELETE("/replies/:id", replyHandler.DeleteReply)

		api.POST("/discussions/:id/upvote", reactionHandler.ToggleDiscussionUpvote)
		api.POST("/discussions/:id/follow", reactionHandler.ToggleFollow)
		api.POST("/replies/:id/upvote", reactionHandler.ToggleReplyUpvote)
		api.POST("/bookmarks", reactionHandler.ToggleBookmark)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkAsRead)
			notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.GET("/stream", notificationHandler.Stream)
		}
	}

	ctx := context.Background()
	if redisClient != nil {
		go viewSvc.StartViewSyncWorker(ctx, cfg.ViewSyncInterval)
	}
	go reconcileSvc.StartReconcileWorker(ctx, cfg.ReconcileInterval)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
