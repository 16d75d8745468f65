package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/filmorate/internal/model"
)

// MemoryStore keeps every entity in process memory. A single RWMutex
// guards all maps so mutations serialise and every read sees one
// consistent snapshot. Records are cloned on the way in and out; callers
// never share maps with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uint64]model.User
	films map[uint64]model.Film
	nextU uint64
	nextF uint64
}

// NewMemoryStore returns an empty store. Ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uint64]model.User),
		films: make(map[uint64]model.Film),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextU++
	u = u.Clone()
	u.ID = s.nextU
	u.Friends = map[uint64]model.FriendshipStatus{}
	s.users[u.ID] = u
	return u.Clone(), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetUserByLogin returns the user with the lowest id carrying login.
func (s *MemoryStore) GetUserByLogin(_ context.Context, login string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		found model.User
		ok    bool
	)
	for _, u := range s.users {
		if u.Login == login && (!ok || u.ID < found.ID) {
			found, ok = u, true
		}
	}
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return found.Clone(), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	u = u.Clone()
	u.Friends = cur.Friends
	s.users[u.ID] = u
	return u.Clone(), nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sortUsers(out)
	return out, nil
}

func (s *MemoryStore) InsertFriendship(_ context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor, ok := s.users[actorID]
	if !ok {
		return false, ErrUserNotFound
	}
	if _, ok := s.users[targetID]; !ok {
		return false, ErrUserNotFound
	}
	if _, exists := actor.Friends[targetID]; exists {
		return false, nil
	}
	actor.Friends[targetID] = status
	return true, nil
}

func (s *MemoryStore) UpdateFriendshipStatus(_ context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor, ok := s.users[actorID]
	if !ok {
		return false, ErrFriendshipNotFound
	}
	cur, exists := actor.Friends[targetID]
	if !exists {
		return false, ErrFriendshipNotFound
	}
	if cur == status {
		return false, nil
	}
	actor.Friends[targetID] = status
	return true, nil
}

func (s *MemoryStore) DeleteFriendship(_ context.Context, actorID, targetID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor, ok := s.users[actorID]
	if !ok {
		return false, nil
	}
	if _, exists := actor.Friends[targetID]; !exists {
		return false, nil
	}
	delete(actor.Friends, targetID)
	return true, nil
}

func (s *MemoryStore) ListFriends(_ context.Context, userID uint64) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := make([]model.User, 0, len(u.Friends))
	for id := range u.Friends {
		if f, ok := s.users[id]; ok {
			out = append(out, f.Clone())
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *MemoryStore) ListCommonFriends(_ context.Context, aID, bID uint64) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[aID]
	if !ok {
		return nil, ErrUserNotFound
	}
	b, ok := s.users[bID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := make([]model.User, 0)
	for id := range a.Friends {
		if _, shared := b.Friends[id]; !shared {
			continue
		}
		if f, ok := s.users[id]; ok {
			out = append(out, f.Clone())
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *MemoryStore) CreateFilm(_ context.Context, f model.Film) (model.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextF++
	f = f.Clone()
	f.ID = s.nextF
	f.Likes = map[uint64]struct{}{}
	s.films[f.ID] = f
	return f.Clone(), nil
}

func (s *MemoryStore) GetFilm(_ context.Context, id uint64) (model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.films[id]
	if !ok {
		return model.Film{}, ErrFilmNotFound
	}
	return f.Clone(), nil
}

func (s *MemoryStore) UpdateFilm(_ context.Context, f model.Film) (model.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.films[f.ID]
	if !ok {
		return model.Film{}, ErrFilmNotFound
	}
	f = f.Clone()
	f.Likes = cur.Likes
	s.films[f.ID] = f
	return f.Clone(), nil
}

func (s *MemoryStore) ListFilms(_ context.Context) ([]model.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Film, 0, len(s.films))
	for _, f := range s.films {
		out = append(out, f.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddLike(_ context.Context, filmID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.likeTarget(filmID, userID)
	if err != nil {
		return false, err
	}
	if _, liked := f.Likes[userID]; liked {
		return false, nil
	}
	f.Likes[userID] = struct{}{}
	return true, nil
}

func (s *MemoryStore) RemoveLike(_ context.Context, filmID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.likeTarget(filmID, userID)
	if err != nil {
		return false, err
	}
	if _, liked := f.Likes[userID]; !liked {
		return false, nil
	}
	delete(f.Likes, userID)
	return true, nil
}

// likeTarget resolves both ends of a like. Caller holds s.mu.
func (s *MemoryStore) likeTarget(filmID, userID uint64) (model.Film, error) {
	f, ok := s.films[filmID]
	if !ok {
		return model.Film{}, ErrFilmNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return model.Film{}, ErrUserNotFound
	}
	return f, nil
}

func sortUsers(us []model.User) {
	sort.Slice(us, func(i, j int) bool { return us[i].ID < us[j].ID })
}
