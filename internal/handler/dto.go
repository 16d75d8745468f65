package handler

import (
	"time"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/validation"
)

// ----- requests -----

type userReq struct {
	Email    string `json:"email" validate:"required,contains=@"`
	Login    string `json:"login" validate:"required,nowhitespace"`
	Name     string `json:"name"`
	Birthday string `json:"birthday" validate:"required,isodate"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

type idRef struct {
	ID int `json:"id"`
}

type filmReq struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"max=200"`
	ReleaseDate string  `json:"releaseDate" validate:"required,isodate"`
	Duration    int     `json:"duration" validate:"gt=0"`
	MPA         *idRef  `json:"mpa" validate:"required"`
	Genres      []idRef `json:"genres" validate:"dive"`
}

type loginReq struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Dates were checked by the isodate tag, so parse errors cannot occur
// here; a zero time is rejected by the gate anyway.
func parseDate(s string) time.Time {
	t, _ := time.Parse(validation.DateLayout, s)
	return t
}

func (r userReq) toModel(id uint64) model.User {
	return model.User{
		ID:       id,
		Email:    r.Email,
		Login:    r.Login,
		Name:     r.Name,
		Birthday: parseDate(r.Birthday),
	}
}

func (r filmReq) toModel(id uint64) model.Film {
	f := model.Film{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: parseDate(r.ReleaseDate),
		Duration:    r.Duration,
	}
	if r.MPA != nil {
		f.MPA = model.MPA{ID: r.MPA.ID}
	}
	for _, g := range r.Genres {
		f.Genres = append(f.Genres, model.Genre{ID: g.ID})
	}
	return f
}

// ----- responses -----

type userResp struct {
	ID       uint64                            `json:"id"`
	Email    string                            `json:"email"`
	Login    string                            `json:"login"`
	Name     string                            `json:"name"`
	Birthday string                            `json:"birthday"`
	Friends  map[uint64]model.FriendshipStatus `json:"friends"`
}

type genreResp struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type mpaResp struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type filmResp struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ReleaseDate string      `json:"releaseDate"`
	Duration    int         `json:"duration"`
	MPA         mpaResp     `json:"mpa"`
	Genres      []genreResp `json:"genres"`
	Likes       []uint64    `json:"likes"`
	LikeCount   int         `json:"likeCount"`
}

type tokenResp struct {
	UserID  uint64    `json:"userId"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func newUserResp(u model.User) userResp {
	friends := u.Friends
	if friends == nil {
		friends = map[uint64]model.FriendshipStatus{}
	}
	return userResp{
		ID:       u.ID,
		Email:    u.Email,
		Login:    u.Login,
		Name:     u.Name,
		Birthday: u.Birthday.Format(validation.DateLayout),
		Friends:  friends,
	}
}

func newUsersResp(us []model.User) []userResp {
	out := make([]userResp, 0, len(us))
	for _, u := range us {
		out = append(out, newUserResp(u))
	}
	return out
}

func newFilmResp(f model.Film) filmResp {
	genres := make([]genreResp, 0, len(f.Genres))
	for _, g := range f.Genres {
		genres = append(genres, genreResp{ID: g.ID, Name: g.Name})
	}
	return filmResp{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		ReleaseDate: f.ReleaseDate.Format(validation.DateLayout),
		Duration:    f.Duration,
		MPA:         mpaResp{ID: f.MPA.ID, Name: f.MPA.Name},
		Genres:      genres,
		Likes:       f.LikeIDs(),
		LikeCount:   f.LikeCount(),
	}
}

func newFilmsResp(fs []model.Film) []filmResp {
	out := make([]filmResp, 0, len(fs))
	for _, f := range fs {
		out = append(out, newFilmResp(f))
	}
	return out
}
