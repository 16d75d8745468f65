package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
)

func containsUser(us []model.User, id uint64) bool {
	for _, u := range us {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestAddFriend_IsAsymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v := f.user(t, "u"), f.user(t, "v")

	if err := f.rel.AddFriend(ctx, u.ID, v.ID); err != nil {
		t.Fatalf("AddFriend error = %v", err)
	}

	uFriends, _ := f.rel.ListFriends(ctx, u.ID)
	if !containsUser(uFriends, v.ID) {
		t.Error("listFriends(u) does not contain v")
	}
	vFriends, _ := f.rel.ListFriends(ctx, v.ID)
	if containsUser(vFriends, u.ID) {
		t.Error("listFriends(v) contains u")
	}

	got, _ := f.users.Get(ctx, u.ID)
	if got.Friends[v.ID] != model.FriendshipRequested {
		t.Errorf("status = %q, want REQUESTED", got.Friends[v.ID])
	}
}

func TestConfirmFriend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v := f.user(t, "u"), f.user(t, "v")

	if err := f.rel.AddFriend(ctx, u.ID, v.ID); err != nil {
		t.Fatalf("AddFriend error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.rel.ConfirmFriend(ctx, u.ID, v.ID); err != nil {
			t.Fatalf("ConfirmFriend #%d error = %v", i+1, err)
		}
		got, _ := f.users.Get(ctx, u.ID)
		if got.Friends[v.ID] != model.FriendshipConfirmed {
			t.Fatalf("after confirm #%d status = %q, want CONFIRMED", i+1, got.Friends[v.ID])
		}
	}

	// Re-adding must not downgrade the confirmed edge.
	if err := f.rel.AddFriend(ctx, u.ID, v.ID); err != nil {
		t.Fatalf("AddFriend again error = %v", err)
	}
	got, _ := f.users.Get(ctx, u.ID)
	if got.Friends[v.ID] != model.FriendshipConfirmed {
		t.Errorf("status after re-add = %q, want CONFIRMED", got.Friends[v.ID])
	}

	want := []queue.EventType{queue.EventFriendRequested, queue.EventFriendConfirmed}
	if got := f.events.types(); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestConfirmFriend_MissingEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, v := f.user(t, "u"), f.user(t, "v")

	_ = f.rel.AddFriend(ctx, u.ID, v.ID)
	err := f.rel.ConfirmFriend(ctx, v.ID, u.ID)
	if !apperror.Is(err, apperror.CodeNotFound) {
		t.Errorf("ConfirmFriend(v, u) error = %v, want NOT_FOUND", err)
	}
}

func TestRemoveFriend(t *testing.T) {
	tests := []struct {
		name    string
		confirm bool
	}{
		{name: "requested edge"},
		{name: "confirmed edge", confirm: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			u, v := f.user(t, "u"), f.user(t, "v")

			_ = f.rel.AddFriend(ctx, u.ID, v.ID)
			if tt.confirm {
				_ = f.rel.ConfirmFriend(ctx, u.ID, v.ID)
			}
			if err := f.rel.RemoveFriend(ctx, u.ID, v.ID); err != nil {
				t.Fatalf("RemoveFriend error = %v", err)
			}
			friends, _ := f.rel.ListFriends(ctx, u.ID)
			if containsUser(friends, v.ID) {
				t.Error("listFriends(u) still contains v")
			}
			// Absence is not an error.
			if err := f.rel.RemoveFriend(ctx, u.ID, v.ID); err != nil {
				t.Errorf("second RemoveFriend error = %v", err)
			}
		})
	}
}

func TestFriendOperations_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u")

	tests := []struct {
		name string
		call func() error
		want apperror.Code
	}{
		{name: "add self", call: func() error { return f.rel.AddFriend(ctx, u.ID, u.ID) }, want: apperror.CodeInvalidOperation},
		{name: "add self unknown id", call: func() error { return f.rel.AddFriend(ctx, 5, 5) }, want: apperror.CodeInvalidOperation},
		{name: "add unknown target", call: func() error { return f.rel.AddFriend(ctx, u.ID, 99) }, want: apperror.CodeNotFound},
		{name: "add unknown actor", call: func() error { return f.rel.AddFriend(ctx, 99, u.ID) }, want: apperror.CodeNotFound},
		{name: "confirm self", call: func() error { return f.rel.ConfirmFriend(ctx, u.ID, u.ID) }, want: apperror.CodeInvalidOperation},
		{name: "remove unknown", call: func() error { return f.rel.RemoveFriend(ctx, u.ID, 99) }, want: apperror.CodeNotFound},
		{name: "list unknown", call: func() error { _, err := f.rel.ListFriends(ctx, 99); return err }, want: apperror.CodeNotFound},
		{name: "common unknown", call: func() error { _, err := f.rel.ListCommonFriends(ctx, u.ID, 99); return err }, want: apperror.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !apperror.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestListCommonFriends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")

	_ = f.rel.AddFriend(ctx, a.ID, c.ID)
	_ = f.rel.AddFriend(ctx, b.ID, c.ID)

	common, err := f.rel.ListCommonFriends(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("ListCommonFriends error = %v", err)
	}
	if len(common) != 1 || common[0].ID != c.ID {
		t.Errorf("common = %v, want [%d]", common, c.ID)
	}
}

func TestLikes_SetSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u")
	film := f.film(t, "Matrix", date(1999, time.March, 31), 136, 3)

	for i := 0; i < 2; i++ {
		if err := f.rel.AddLike(ctx, film.ID, u.ID); err != nil {
			t.Fatalf("AddLike #%d error = %v", i+1, err)
		}
	}
	if err := f.rel.RemoveLike(ctx, film.ID, u.ID); err != nil {
		t.Fatalf("RemoveLike error = %v", err)
	}
	got, _ := f.films.Get(ctx, film.ID)
	if got.LikedBy(u.ID) {
		t.Error("film still liked after one remove")
	}
	if err := f.rel.RemoveLike(ctx, film.ID, u.ID); err != nil {
		t.Errorf("RemoveLike on absent like error = %v", err)
	}

	want := []queue.EventType{queue.EventLikeAdded, queue.EventLikeRemoved}
	if got := f.events.types(); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestLikes_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u")
	film := f.film(t, "Up", date(2009, time.May, 29), 96, 1)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "add unknown film", call: func() error { return f.rel.AddLike(ctx, 99, u.ID) }},
		{name: "add unknown user", call: func() error { return f.rel.AddLike(ctx, film.ID, 99) }},
		{name: "remove unknown film", call: func() error { return f.rel.RemoveLike(ctx, 99, u.ID) }},
		{name: "remove unknown user", call: func() error { return f.rel.RemoveLike(ctx, film.ID, 99) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !apperror.Is(err, apperror.CodeNotFound) {
				t.Errorf("error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestPublishFailureDoesNotFailCall(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	ctx := context.Background()
	u, v := f.user(t, "u"), f.user(t, "v")

	if err := f.rel.AddFriend(ctx, u.ID, v.ID); err != nil {
		t.Fatalf("AddFriend error = %v", err)
	}
	friends, _ := f.rel.ListFriends(ctx, u.ID)
	if !containsUser(friends, v.ID) {
		t.Error("edge not stored when publishing failed")
	}
}

func equalTypes(a, b []queue.EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
