package repository

import (
	"context"

	"github.com/iliyamo/filmorate/internal/model"
)

// UserStore persists users and their outgoing friendship edges.
//
// Updates replace the user's own fields only; friendship edges are
// relations and survive an update. Lists are ordered by id ascending.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id uint64) (model.User, error)
	GetUserByLogin(ctx context.Context, login string) (model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// InsertFriendship creates the edge actor → target with the given
	// status unless an edge already exists, in which case it is left
	// untouched. It reports whether a row was inserted.
	InsertFriendship(ctx context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error)
	// UpdateFriendshipStatus sets the status of an existing edge and
	// reports whether it changed. ErrFriendshipNotFound when absent.
	UpdateFriendshipStatus(ctx context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error)
	// DeleteFriendship removes the edge and reports whether it existed.
	DeleteFriendship(ctx context.Context, actorID, targetID uint64) (bool, error)
	ListFriends(ctx context.Context, userID uint64) ([]model.User, error)
	ListCommonFriends(ctx context.Context, aID, bID uint64) ([]model.User, error)
}

// FilmStore persists films and the like relation. Updates keep the
// film's likes.
type FilmStore interface {
	CreateFilm(ctx context.Context, f model.Film) (model.Film, error)
	GetFilm(ctx context.Context, id uint64) (model.Film, error)
	UpdateFilm(ctx context.Context, f model.Film) (model.Film, error)
	ListFilms(ctx context.Context) ([]model.Film, error)

	// AddLike and RemoveLike report whether the like set changed.
	// Both return ErrFilmNotFound or ErrUserNotFound for unknown ids.
	AddLike(ctx context.Context, filmID, userID uint64) (bool, error)
	RemoveLike(ctx context.Context, filmID, userID uint64) (bool, error)
}

// FilmRanker is implemented by stores that can rank films themselves.
// The order must match service.RankFilms: like count descending, then
// film id ascending.
type FilmRanker interface {
	PopularFilms(ctx context.Context, count int) ([]model.Film, error)
}

// Store is the full persistence capability used by the services.
type Store interface {
	UserStore
	FilmStore
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}
