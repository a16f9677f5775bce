package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tagblaze/tagblaze/internal/auth"
	"github.com/tagblaze/tagblaze/internal/config"
	"github.com/tagblaze/tagblaze/internal/middleware"
	"github.com/tagblaze/tagblaze/internal/repository"
	"github.com/tagblaze/tagblaze/internal/seed"
	"github.com/tagblaze/tagblaze/internal/version"
)

type Router struct {
	engine          *gin.Engine
	db              *sql.DB
	authMiddleware  *middleware.AuthMiddleware
	authHandler     *AuthHandler
	ticketHandler   *TicketHandler
	tagHandler      *TagHandler
	relationHandler *RelationHandler
	adminHandler    *AdminHandler
}

func NewRouter(db *sql.DB, cfg *config.Config) *Router {
	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.Password.BcryptCost)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	tagRepo := repository.NewTagRepository(db)
	linkRepo := repository.NewTicketTagRepository(db)

	// Services
	authService := auth.NewAuthService(userRepo, jwtManager, hasher, cfg.Auth.Password.MinLength)
	seeder := seed.NewService(db, userRepo, ticketRepo, tagRepo, linkRepo, hasher)

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Metrics())

	return &Router{
		engine:          engine,
		db:              db,
		authMiddleware:  middleware.NewAuthMiddleware(authService),
		authHandler:     NewAuthHandler(authService),
		ticketHandler:   NewTicketHandler(ticketRepo),
		tagHandler:      NewTagHandler(tagRepo),
		relationHandler: NewRelationHandler(linkRepo),
		adminHandler:    NewAdminHandler(seeder),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", r.healthCheck)
	r.engine.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetInfo())
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public auth routes
	authGroup := r.engine.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
	}

	// Protected auth routes
	authProtected := r.engine.Group("/auth")
	authProtected.Use(r.authMiddleware.RequireAuth())
	{
		authProtected.GET("/me", r.authHandler.Me)
	}

	// Ticket routes, all behind the guard
	ticketGroup := r.engine.Group("/tickets")
	ticketGroup.Use(r.authMiddleware.RequireAuth())
	{
		ticketGroup.POST("", r.ticketHandler.CreateTicket)
		ticketGroup.GET("", r.ticketHandler.ListTickets)
		ticketGroup.GET("/:id", r.ticketHandler.GetTicket)
		ticketGroup.PUT("/:id", r.ticketHandler.UpdateTicket)
		ticketGroup.DELETE("/:id", r.ticketHandler.DeleteTicket)
	}

	// Tag reads are public; mutations need a bearer token
	tagGroup := r.engine.Group("/tags")
	{
		tagGroup.GET("", r.tagHandler.ListTags)
		tagGroup.GET("/:id", r.tagHandler.GetTag)
	}
	tagProtected := r.engine.Group("/tags")
	tagProtected.Use(r.authMiddleware.RequireAuth())
	{
		tagProtected.POST("", r.tagHandler.CreateTag)
		tagProtected.PUT("/:id", r.tagHandler.UpdateTag)
		tagProtected.DELETE("/:id", r.tagHandler.DeleteTag)
	}

	// Relation routes: listing is public, attach/detach need a bearer token
	relationGroup := r.engine.Group("/relations")
	{
		relationGroup.GET("/:ticket_id/tags", r.relationHandler.ListTagsForTicket)
	}
	relationProtected := r.engine.Group("/relations")
	relationProtected.Use(r.authMiddleware.RequireAuth())
	{
		relationProtected.POST("/:ticket_id/tags/:tag_id", r.relationHandler.AttachTag)
		relationProtected.DELETE("/:ticket_id/tags/:tag_id", r.relationHandler.DetachTag)
	}

	// Development reset/seed endpoint
	r.engine.POST("/admin/dev/reset-db", r.adminHandler.ResetDB)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) healthCheck(c *gin.Context) {
	if err := r.db.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tagblaze-api",
		"version": version.Short(),
	})
}
