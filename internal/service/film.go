package service

import (
	"context"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
)

// FilmService creates, updates and reads films through the Gate.
type FilmService struct {
	store repository.FilmStore
	gate  *Gate
}

func NewFilmService(store repository.FilmStore, gate *Gate) *FilmService {
	return &FilmService{store: store, gate: gate}
}

func (s *FilmService) Create(ctx context.Context, f model.Film) (model.Film, error) {
	if err := s.gate.ValidateFilm(&f); err != nil {
		return model.Film{}, err
	}
	created, err := s.store.CreateFilm(ctx, f)
	return created, storeError(err)
}

// Update replaces the film's fields and genre list. Likes survive.
func (s *FilmService) Update(ctx context.Context, f model.Film) (model.Film, error) {
	if err := s.gate.ValidateFilm(&f); err != nil {
		return model.Film{}, err
	}
	updated, err := s.store.UpdateFilm(ctx, f)
	return updated, storeError(err)
}

func (s *FilmService) Get(ctx context.Context, id uint64) (model.Film, error) {
	f, err := s.store.GetFilm(ctx, id)
	return f, storeError(err)
}

func (s *FilmService) List(ctx context.Context) ([]model.Film, error) {
	fs, err := s.store.ListFilms(ctx)
	return fs, storeError(err)
}
