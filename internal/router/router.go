// Package router wires handlers to routes. Three surfaces: public browse
// (no auth, response-cached), authenticated user routes (JWT) and admin
// routes (JWT + admin role).
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jovid1242/cinema-ticketing/internal/config"
	"github.com/jovid1242/cinema-ticketing/internal/handler"
	"github.com/jovid1242/cinema-ticketing/internal/middleware"
	"github.com/jovid1242/cinema-ticketing/internal/model"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Movies   *handler.MovieHandler
	Halls    *handler.HallHandler
	Sessions *handler.SessionHandler
	Tickets  *handler.TicketHandler
	Stats    *handler.StatsHandler
}

// Register mounts all routes. rdb may be nil; caching and rate limiting
// then run as no-ops.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.Use(rateLimit)

	// Auth endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Public browse, response-cached. The seat map stays uncached so
	// availability reflects holds placed moments ago.
	e.GET("/v1/movies", h.Movies.List, cache)
	e.GET("/v1/movies/:id", h.Movies.Get, cache)
	e.GET("/v1/halls", h.Halls.List, cache)
	e.GET("/v1/halls/:id", h.Halls.Get, cache)
	e.GET("/v1/sessions", h.Sessions.List, cache)
	e.GET("/v1/sessions/:id", h.Sessions.Get, cache)
	e.GET("/v1/sessions/:id/seats", h.Sessions.Seats)

	// Authenticated routes: any logged-in role.
	user := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	user.POST("/auth/logout", h.Auth.Logout)
	user.GET("/me", h.Auth.Me)
	user.POST("/tickets", h.Tickets.Reserve)
	user.GET("/tickets", h.Tickets.List)
	user.GET("/tickets/:id", h.Tickets.Get)
	user.PUT("/tickets/:id/status", h.Tickets.UpdateStatus)
	user.DELETE("/tickets/:id", h.Tickets.Delete)

	// Admin routes: catalog and scheduling management, user list, stats.
	admin := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/movies", h.Movies.Create)
	admin.PUT("/movies/:id", h.Movies.Update)
	admin.DELETE("/movies/:id", h.Movies.Delete)
	admin.POST("/halls", h.Halls.Create)
	admin.PUT("/halls/:id", h.Halls.Update)
	admin.DELETE("/halls/:id", h.Halls.Delete)
	admin.POST("/sessions", h.Sessions.Create)
	admin.PUT("/sessions/:id", h.Sessions.Update)
	admin.DELETE("/sessions/:id", h.Sessions.Delete)
	admin.GET("/users", h.Auth.ListUsers)
	admin.PUT("/users/:id", h.Auth.UpdateUser)
	admin.DELETE("/users/:id", h.Auth.DeleteUser)
	admin.GET("/statistics/overview", h.Stats.Overview)
}
