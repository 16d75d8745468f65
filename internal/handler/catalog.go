package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/catalog"
)

// CatalogHandler exposes the read-only genre and MPA rating catalog.
type CatalogHandler struct {
	Catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: c}
}

// catalogID parses :id as a catalog key. Catalog ids are small ints.
func catalogID(c echo.Context) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("id", "id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// Genres: GET /v1/genres
func (h *CatalogHandler) Genres(c echo.Context) error {
	gs := h.Catalog.Genres()
	out := make([]genreResp, 0, len(gs))
	for _, g := range gs {
		out = append(out, genreResp{ID: g.ID, Name: g.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// Genre: GET /v1/genres/:id
func (h *CatalogHandler) Genre(c echo.Context) error {
	id, err := catalogID(c)
	if err != nil {
		return respondError(c, err)
	}
	g, ok := h.Catalog.Genre(id)
	if !ok {
		return respondError(c, apperror.NotFound("genre %d not found", id))
	}
	return c.JSON(http.StatusOK, genreResp{ID: g.ID, Name: g.Name})
}

// MPAs: GET /v1/mpa
func (h *CatalogHandler) MPAs(c echo.Context) error {
	ms := h.Catalog.MPAs()
	out := make([]mpaResp, 0, len(ms))
	for _, m := range ms {
		out = append(out, mpaResp{ID: m.ID, Name: m.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// MPA: GET /v1/mpa/:id
func (h *CatalogHandler) MPA(c echo.Context) error {
	id, err := catalogID(c)
	if err != nil {
		return respondError(c, err)
	}
	m, ok := h.Catalog.MPA(id)
	if !ok {
		return respondError(c, apperror.NotFound("MPA rating %d not found", id))
	}
	return c.JSON(http.StatusOK, mpaResp{ID: m.ID, Name: m.Name})
}
