package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/filmorate/internal/catalog"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/repository"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store  *repository.MemoryStore
	gate   *Gate
	users  *UserService
	films  *FilmService
	rel    *RelationshipManager
	rank   *RankingEngine
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	gate := NewGate(catalog.Default)
	gate.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	events := &recordingPublisher{}
	return &fixture{
		store:  store,
		gate:   gate,
		users:  NewUserService(store, gate, 4),
		films:  NewFilmService(store, gate),
		rel:    NewRelationshipManager(store, store, events),
		rank:   NewRankingEngine(store),
		events: events,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) user(t *testing.T, login string) model.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), model.User{
		Login:    login,
		Email:    login + "@example.com",
		Birthday: date(1990, time.January, 1),
	}, "")
	if err != nil {
		t.Fatalf("create user %q: %v", login, err)
	}
	return u
}

func (f *fixture) film(t *testing.T, name string, release time.Time, duration, mpaID int) model.Film {
	t.Helper()
	film, err := f.films.Create(context.Background(), model.Film{
		Name:        name,
		ReleaseDate: release,
		Duration:    duration,
		MPA:         model.MPA{ID: mpaID},
	})
	if err != nil {
		t.Fatalf("create film %q: %v", name, err)
	}
	return film
}
