package service

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/catalog"
	"github.com/iliyamo/filmorate/internal/model"
)

// MinReleaseDate is the earliest accepted release date: the first public
// film screening.
var MinReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// MaxDescriptionLength bounds Film.Description in characters.
const MaxDescriptionLength = 200

// Gate enforces the domain rules on films and users before any store
// mutation. It may normalise the record it is given (blank user names,
// catalog names on genre/MPA references) but never touches a store.
type Gate struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewGate returns a gate that resolves references against c.
func NewGate(c *catalog.Catalog) *Gate {
	return &Gate{catalog: c, now: time.Now}
}

// ValidateFilm checks f and fills MPA and genre names from the catalog.
// Duplicate genres collapse onto their first occurrence.
func (g *Gate) ValidateFilm(f *model.Film) error {
	if strings.TrimSpace(f.Name) == "" {
		return apperror.Validation("name", "film name must not be blank")
	}
	if n := utf8.RuneCountInString(f.Description); n > MaxDescriptionLength {
		return apperror.Validation("description", "description must be at most %d characters, got %d", MaxDescriptionLength, n)
	}
	if f.ReleaseDate.IsZero() || f.ReleaseDate.Before(MinReleaseDate) {
		return apperror.Validation("releaseDate", "release date must not be before 1895-12-28, got %s", f.ReleaseDate.Format("2006-01-02"))
	}
	if f.Duration <= 0 {
		return apperror.Validation("duration", "duration must be positive, got %d", f.Duration)
	}

	mpa, ok := g.catalog.MPA(f.MPA.ID)
	if !ok {
		return apperror.Validation("mpa", "unknown MPA rating id %d", f.MPA.ID)
	}
	f.MPA = mpa

	genres := make([]model.Genre, 0, len(f.Genres))
	seen := make(map[int]struct{}, len(f.Genres))
	for _, ref := range f.Genres {
		genre, ok := g.catalog.Genre(ref.ID)
		if !ok {
			return apperror.Validation("genres", "unknown genre id %d", ref.ID)
		}
		if _, dup := seen[genre.ID]; dup {
			continue
		}
		seen[genre.ID] = struct{}{}
		genres = append(genres, genre)
	}
	f.Genres = genres
	return nil
}

// ValidateUser checks u and substitutes the login for a blank name.
// "Today" for the birthday rule is the current UTC calendar date,
// whatever the server's local zone.
func (g *Gate) ValidateUser(u *model.User) error {
	if strings.TrimSpace(u.Login) == "" {
		return apperror.Validation("login", "login must not be blank")
	}
	if strings.ContainsFunc(u.Login, unicode.IsSpace) {
		return apperror.Validation("login", "login must not contain whitespace: %q", u.Login)
	}
	if !strings.Contains(u.Email, "@") {
		return apperror.Validation("email", "email must contain '@': %q", u.Email)
	}
	if u.Birthday.IsZero() {
		return apperror.Validation("birthday", "birthday is required")
	}
	now := g.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if u.Birthday.After(today) {
		return apperror.Validation("birthday", "birthday must not be in the future, got %s", u.Birthday.Format("2006-01-02"))
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}
	return nil
}
