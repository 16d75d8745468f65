package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/service"
)

// FilmHandler serves film records, likes and the popular list.
type FilmHandler struct {
	Films   *service.FilmService
	Rel     *service.RelationshipManager
	Ranking *service.RankingEngine
}

func NewFilmHandler(films *service.FilmService, rel *service.RelationshipManager, ranking *service.RankingEngine) *FilmHandler {
	if films == nil || rel == nil || ranking == nil {
		panic("nil service passed to NewFilmHandler")
	}
	return &FilmHandler{Films: films, Rel: rel, Ranking: ranking}
}

// Create: POST /v1/films
func (h *FilmHandler) Create(c echo.Context) error {
	var req filmReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Films.Create(ctx, req.toModel(0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newFilmResp(f))
}

// Update: PUT /v1/films/:id
func (h *FilmHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req filmReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Films.Update(ctx, req.toModel(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmResp(f))
}

// Get: GET /v1/films/:id
func (h *FilmHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Films.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmResp(f))
}

// List: GET /v1/films
func (h *FilmHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	fs, err := h.Films.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmsResp(fs))
}

// Popular: GET /v1/films/popular?count=N. A missing or non-positive
// count falls back to service.DefaultTopCount.
func (h *FilmHandler) Popular(c echo.Context) error {
	count := 0
	if raw := c.QueryParam("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, apperror.Validation("count", "count must be an integer, got %q", raw))
		}
		count = n
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fs, err := h.Ranking.TopFilms(ctx, count)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmsResp(fs))
}

// AddLike: PUT /v1/films/:id/like/:userId
func (h *FilmHandler) AddLike(c echo.Context) error {
	return h.likeOp(c, h.Rel.AddLike)
}

// RemoveLike: DELETE /v1/films/:id/like/:userId
func (h *FilmHandler) RemoveLike(c echo.Context) error {
	return h.likeOp(c, h.Rel.RemoveLike)
}

func (h *FilmHandler) likeOp(c echo.Context, op func(ctx context.Context, filmID, userID uint64) error) error {
	filmID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := op(ctx, filmID, userID); err != nil {
		return respondError(c, err)
	}
	f, err := h.Films.Get(ctx, filmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newFilmResp(f))
}
