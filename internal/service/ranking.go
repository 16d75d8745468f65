package service

import (
	"context"
	"sort"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// DefaultTopCount replaces a non-positive count in TopFilms.
const DefaultTopCount = 10

// RankingEngine answers the popular-films query.
type RankingEngine struct {
	films repository.FilmStore
}

func NewRankingEngine(films repository.FilmStore) *RankingEngine {
	return &RankingEngine{films: films}
}

// TopFilms returns at most count films ordered by like count descending,
// then id ascending. Stores implementing repository.FilmRanker rank on
// their side; others are ranked in memory with RankFilms.
func (e *RankingEngine) TopFilms(ctx context.Context, count int) ([]model.Film, error) {
	if count <= 0 {
		count = DefaultTopCount
	}
	if r, ok := e.films.(repository.FilmRanker); ok {
		fs, err := r.PopularFilms(ctx, count)
		return fs, storeError(err)
	}
	all, err := e.films.ListFilms(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return RankFilms(all, count), nil
}

// RankFilms sorts a copy of films by like count descending, then id
// ascending, and truncates it to count entries. count <= 0 means
// DefaultTopCount.
func RankFilms(films []model.Film, count int) []model.Film {
	if count <= 0 {
		count = DefaultTopCount
	}
	out := append([]model.Film(nil), films...)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].LikeCount(), out[j].LikeCount()
		if li != lj {
			return li > lj
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > count {
		out = out[:count]
	}
	if out == nil {
		out = []model.Film{}
	}
	return out
}
