package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Users   *handler.UserHandler
	Films   *handler.FilmHandler
	Catalog *handler.CatalogHandler
	Auth    *handler.AuthHandler
	Health  echo.HandlerFunc
}

// Auth controls the bearer-token guard on user updates and relationship
// mutations. With Enabled false every route is public and no login route
// is mounted.
type Auth struct {
	Enabled   bool
	JWTSecret string
}

// RegisterRoutes mounts the operational endpoints at the root and the API
// under /v1.
func RegisterRoutes(e *echo.Echo, h Handlers, auth Auth) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	if auth.Enabled && h.Auth != nil {
		v1.POST("/auth/login", h.Auth.Login)
	}

	// Guards for the acting user: :id on user updates and friend routes,
	// :userId on likes.
	var friendGuard, likeGuard []echo.MiddlewareFunc
	if auth.Enabled {
		jwt := middleware.JWTAuth(auth.JWTSecret)
		friendGuard = []echo.MiddlewareFunc{jwt, middleware.RequireSelf("id")}
		likeGuard = []echo.MiddlewareFunc{jwt, middleware.RequireSelf("userId")}
	}

	registerUsers(v1, h.Users, friendGuard)
	registerFilms(v1, h.Films, likeGuard)
	registerCatalog(v1, h.Catalog)
}

func registerUsers(g *echo.Group, h *handler.UserHandler, guard []echo.MiddlewareFunc) {
	g.POST("/users", h.Create)
	g.PUT("/users/:id", h.Update, guard...)
	g.GET("/users", h.List)
	g.GET("/users/:id", h.Get)

	g.PUT("/users/:id/friends/:friendId", h.AddFriend, guard...)
	g.PUT("/users/:id/friends/:friendId/confirm", h.ConfirmFriend, guard...)
	g.DELETE("/users/:id/friends/:friendId", h.RemoveFriend, guard...)
	g.GET("/users/:id/friends", h.ListFriends)
	g.GET("/users/:id/friends/common/:otherId", h.ListCommonFriends)
}

func registerFilms(g *echo.Group, h *handler.FilmHandler, guard []echo.MiddlewareFunc) {
	g.POST("/films", h.Create)
	g.PUT("/films/:id", h.Update)
	g.GET("/films", h.List)
	// Static segment wins over :id in echo's router.
	g.GET("/films/popular", h.Popular)
	g.GET("/films/:id", h.Get)

	g.PUT("/films/:id/like/:userId", h.AddLike, guard...)
	g.DELETE("/films/:id/like/:userId", h.RemoveLike, guard...)
}

func registerCatalog(g *echo.Group, h *handler.CatalogHandler) {
	g.GET("/genres", h.Genres)
	g.GET("/genres/:id", h.Genre)
	g.GET("/mpa", h.MPAs)
	g.GET("/mpa/:id", h.MPA)
}
