package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/waypost/backend/config"
	"github.com/waypost/backend/internal/auth"
	"github.com/waypost/backend/internal/cache"
	"github.com/waypost/backend/internal/database"
	"github.com/waypost/backend/internal/handlers"
	"github.com/waypost/backend/internal/middleware"
	"github.com/waypost/backend/internal/moderation"
	"github.com/waypost/backend/internal/repository"
	"github.com/waypost/backend/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - live moderation feed disabled")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	journeyRepo := repository.NewJourneyRepository(db)
	postRepo := repository.NewPostRepository(db)
	modRepo := repository.NewModerationRepository(db)

	// Moderation pipeline
	scanner := moderation.NewScanner(cfg.Moderation.ExtraKeywords)
	classifier := moderation.NewClassifier(cfg.Moderation)
	policy := moderation.NewPolicy(scanner, classifier, cfg.Moderation)
	if !classifier.Available() {
		log.Println("MODERATION_API_KEY not set - remote classification disabled, local rules only")
	}
	var events moderation.EventPublisher
	if redis != nil {
		events = redis
	}
	modService := moderation.NewService(policy, classifier, scanner, modRepo, events, cfg.Moderation)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, modService)
	journeyHandler := handlers.NewJourneyHandler(journeyRepo, modService)
	postHandler := handlers.NewPostHandler(postRepo, journeyRepo, modService)
	contentDeleter := handlers.NewContentDeleter(postRepo, journeyRepo)
	modHandler := handlers.NewModerationHandler(modRepo, userRepo, contentDeleter)

	// Initialize WebSocket hub (only if Redis is available)
	var wsHandler *websocket.Handler
	if redis != nil {
		hub := websocket.NewHub(redis)
		go hub.Run()
		wsHandler = websocket.NewHandler(hub, jwtService, cfg.CORS.AllowedOrigins)
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRequestsPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Admin live feed of moderation queue events (only if Redis is available)
	if wsHandler != nil {
		router.GET("/ws/moderation", wsHandler.HandleFeed)
	}

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		// User routes
		api.GET("/me", authHandler.GetMe)
		api.PUT("/me", authHandler.UpdateProfile)

		// Journey routes
		api.GET("/journeys", journeyHandler.GetJourneys)
		api.POST("/journeys",
			middleware.RateLimitMiddleware(rateLimiter),
			middleware.ActionRateLimit(redis, "journey_create", 1, 5),
			journeyHandler.CreateJourney)
		api.GET("/journeys/:id", journeyHandler.GetJourney)
		api.PUT("/journeys/:id", journeyHandler.UpdateJourney)
		api.DELETE("/journeys/:id", journeyHandler.DeleteJourney)

		// Post routes
		api.GET("/journeys/:id/posts", postHandler.GetJourneyPosts)
		api.POST("/posts",
			middleware.RateLimitMiddleware(rateLimiter),
			middleware.ActionRateLimit(redis, "post_create", 1, 10),
			postHandler.CreatePost)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)

		// Admin moderation routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/moderation", modHandler.ListQueue)
			admin.POST("/moderation/:id/review", modHandler.ReviewEntry)
			admin.POST("/moderation/bulk-review", modHandler.BulkReview)
			admin.POST("/moderation/:id/action", modHandler.EnforceAction)
			admin.POST("/users/:id/role", modHandler.SetUserRole)
			admin.DELETE("/users/:id", modHandler.DeleteUser)
		}
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting Waypost server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
