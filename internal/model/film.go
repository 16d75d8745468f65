package model

import (
	"sort"
	"time"
)

// Film represents a movie in the catalog as stored in the `films`
// table together with its genre links and likes.
//
// Fields:
//  ID          – primary key identifier, assigned by the store.
//  Name        – non-blank title.
//  Description – free text, at most 200 characters.
//  ReleaseDate – premiere date (UTC midnight), not before 1895-12-28.
//  Duration    – running time in minutes, positive.
//  MPA         – content rating copied from the reference catalog.
//  Genres      – genre references in request order, no duplicates.
//  Likes       – ids of users who liked the film.
type Film struct {
	ID          uint64              // films.id
	Name        string              // films.name
	Description string              // films.description
	ReleaseDate time.Time           // films.release_date
	Duration    int                 // films.duration
	MPA         MPA                 // films.mpa_id joined with mpa
	Genres      []Genre             // film_genres ordered by position
	Likes       map[uint64]struct{} // film_likes rows for this film
}

// LikeCount returns the number of distinct users who liked the film.
func (f Film) LikeCount() int {
	return len(f.Likes)
}

// LikedBy reports whether the given user likes the film.
func (f Film) LikedBy(userID uint64) bool {
	_, ok := f.Likes[userID]
	return ok
}

// LikeIDs returns the liking user ids in ascending order.
func (f Film) LikeIDs() []uint64 {
	ids := make([]uint64, 0, len(f.Likes))
	for id := range f.Likes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy of the film.
func (f Film) Clone() Film {
	out := f
	out.Genres = append([]Genre(nil), f.Genres...)
	out.Likes = make(map[uint64]struct{}, len(f.Likes))
	for id := range f.Likes {
		out.Likes[id] = struct{}{}
	}
	return out
}
