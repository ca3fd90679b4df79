package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/api/handlers"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/auth"
	"github.com/hugh/team-hub/internal/board"
	"github.com/hugh/team-hub/internal/dashboard"
	"github.com/hugh/team-hub/internal/project"
	"github.com/hugh/team-hub/internal/workspace"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	resolver := access.NewResolver(cfg.DB)
	workspaceService := workspace.NewService(cfg.DB, resolver)
	projectService := project.NewService(cfg.DB, resolver)
	boardService := board.NewService(cfg.DB, resolver)
	dashboardService := dashboard.NewService(cfg.DB, resolver)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.AuthService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(boardService)
	commentHandler := handlers.NewCommentHandler(boardService)
	documentHandler := handlers.NewDocumentHandler(projectService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/me", userHandler.Me)
			})

			// Workspace endpoints
			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)
				r.Get("/{id}", workspaceHandler.Get)
				r.Patch("/{id}", workspaceHandler.Update)
				r.Delete("/{id}", workspaceHandler.Delete)
				r.Post("/{id}/members", workspaceHandler.AddMember)
				r.Delete("/{id}/members/{userID}", workspaceHandler.RemoveMember)
			})

			// Project endpoints
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Patch("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
			})

			// Task endpoints
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Patch("/{id}", taskHandler.Update)
				r.Patch("/{id}/position", taskHandler.Reposition)
				r.Delete("/{id}", taskHandler.Delete)
			})

			// Comment endpoints
			r.Route("/comments", func(r chi.Router) {
				r.Get("/", commentHandler.List)
				r.Post("/", commentHandler.Create)
				r.Patch("/{id}", commentHandler.Update)
				r.Delete("/{id}", commentHandler.Delete)
			})

			// Document endpoints
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", documentHandler.List)
				r.Post("/", documentHandler.Create)
				r.Get("/{id}", documentHandler.Get)
				r.Patch("/{id}", documentHandler.Update)
				r.Delete("/{id}", documentHandler.Delete)
			})

			// Dashboard endpoints
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboardHandler.Stats)
				r.Get("/workspace/{id}/stats", dashboardHandler.WorkspaceStats)
			})
		})
	})

	return &Router{r}
}
