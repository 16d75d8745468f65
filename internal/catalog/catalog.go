// Package catalog holds the static genre and MPA reference tables. The
// tables are built once at startup and never change afterwards, so a
// Catalog is safe for concurrent use without locking.
package catalog

import (
	"sort"

	"github.com/iliyamo/filmorate/internal/model"
)

// Catalog is an immutable id → record mapping for genres and MPA ratings.
type Catalog struct {
	genres map[int]model.Genre
	mpas   map[int]model.MPA
}

// New builds a catalog from the given records. Later duplicates of an id
// replace earlier ones.
func New(genres []model.Genre, mpas []model.MPA) *Catalog {
	c := &Catalog{
		genres: make(map[int]model.Genre, len(genres)),
		mpas:   make(map[int]model.MPA, len(mpas)),
	}
	for _, g := range genres {
		c.genres[g.ID] = g
	}
	for _, m := range mpas {
		c.mpas[m.ID] = m
	}
	return c
}

// Default is the catalog every deployment ships with.
var Default = New(
	[]model.Genre{
		{ID: 1, Name: "Комедия"},
		{ID: 2, Name: "Драма"},
		{ID: 3, Name: "Мультфильм"},
		{ID: 4, Name: "Триллер"},
		{ID: 5, Name: "Документальный"},
		{ID: 6, Name: "Боевик"},
	},
	[]model.MPA{
		{ID: 1, Name: "G"},
		{ID: 2, Name: "PG"},
		{ID: 3, Name: "PG-13"},
		{ID: 4, Name: "R"},
		{ID: 5, Name: "NC-17"},
	},
)

// Genre looks up a genre by id.
func (c *Catalog) Genre(id int) (model.Genre, bool) {
	g, ok := c.genres[id]
	return g, ok
}

// MPA looks up an MPA rating by id.
func (c *Catalog) MPA(id int) (model.MPA, bool) {
	m, ok := c.mpas[id]
	return m, ok
}

// Genres returns all genres ordered by id.
func (c *Catalog) Genres() []model.Genre {
	out := make([]model.Genre, 0, len(c.genres))
	for _, g := range c.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MPAs returns all MPA ratings ordered by id.
func (c *Catalog) MPAs() []model.MPA {
	out := make([]model.MPA, 0, len(c.mpas))
	for _, m := range c.mpas {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
