package service

import (
	"context"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/metrics"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/repository"
)

// EventPublisher hands activity events to the broker. queue.Publisher
// and queue.NopPublisher implement it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// RelationshipManager owns the friendship state machine and the like
// sets. Edge states: ABSENT → REQUESTED (AddFriend) → CONFIRMED
// (ConfirmFriend); either state → ABSENT (RemoveFriend).
//
// An event is published only when a call actually changed state;
// publish failures are logged and never fail the call.
type RelationshipManager struct {
	users  repository.UserStore
	films  repository.FilmStore
	events EventPublisher
}

func NewRelationshipManager(users repository.UserStore, films repository.FilmStore, events EventPublisher) *RelationshipManager {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &RelationshipManager{users: users, films: films, events: events}
}

// AddFriend creates actor → target in REQUESTED state. An existing edge,
// including a CONFIRMED one, is left as it is.
func (m *RelationshipManager) AddFriend(ctx context.Context, actorID, targetID uint64) error {
	if err := m.requirePair(ctx, actorID, targetID); err != nil {
		return err
	}
	inserted, err := m.users.InsertFriendship(ctx, actorID, targetID, model.FriendshipRequested)
	if err != nil {
		return storeError(err)
	}
	if inserted {
		metrics.RecordFriendshipTransition(string(model.FriendshipRequested))
		m.publish(ctx, queue.EventFriendRequested, actorID, targetID)
	}
	return nil
}

// ConfirmFriend moves actor → target to CONFIRMED. NOT_FOUND when the
// edge does not exist; confirming twice is a no-op.
func (m *RelationshipManager) ConfirmFriend(ctx context.Context, actorID, targetID uint64) error {
	if err := m.requirePair(ctx, actorID, targetID); err != nil {
		return err
	}
	changed, err := m.users.UpdateFriendshipStatus(ctx, actorID, targetID, model.FriendshipConfirmed)
	if err != nil {
		return storeError(err)
	}
	if changed {
		metrics.RecordFriendshipTransition(string(model.FriendshipConfirmed))
		m.publish(ctx, queue.EventFriendConfirmed, actorID, targetID)
	}
	return nil
}

// RemoveFriend deletes actor → target. A missing edge is not an error.
func (m *RelationshipManager) RemoveFriend(ctx context.Context, actorID, targetID uint64) error {
	if err := m.requirePair(ctx, actorID, targetID); err != nil {
		return err
	}
	removed, err := m.users.DeleteFriendship(ctx, actorID, targetID)
	if err != nil {
		return storeError(err)
	}
	if removed {
		metrics.RecordFriendshipTransition("ABSENT")
		m.publish(ctx, queue.EventFriendRemoved, actorID, targetID)
	}
	return nil
}

// ListFriends returns the targets of every outgoing edge of userID, any
// status, ordered by id.
func (m *RelationshipManager) ListFriends(ctx context.Context, userID uint64) ([]model.User, error) {
	us, err := m.users.ListFriends(ctx, userID)
	return us, storeError(err)
}

// ListCommonFriends returns the users both a and b have an outgoing edge
// to, ordered by id.
func (m *RelationshipManager) ListCommonFriends(ctx context.Context, aID, bID uint64) ([]model.User, error) {
	us, err := m.users.ListCommonFriends(ctx, aID, bID)
	return us, storeError(err)
}

// AddLike records that userID likes filmID. Liking twice is a no-op.
func (m *RelationshipManager) AddLike(ctx context.Context, filmID, userID uint64) error {
	added, err := m.films.AddLike(ctx, filmID, userID)
	if err != nil {
		return storeError(err)
	}
	if added {
		metrics.RecordLike(true)
		m.publish(ctx, queue.EventLikeAdded, userID, filmID)
	}
	return nil
}

// RemoveLike drops the like if present. Both ids must exist.
func (m *RelationshipManager) RemoveLike(ctx context.Context, filmID, userID uint64) error {
	removed, err := m.films.RemoveLike(ctx, filmID, userID)
	if err != nil {
		return storeError(err)
	}
	if removed {
		metrics.RecordLike(false)
		m.publish(ctx, queue.EventLikeRemoved, userID, filmID)
	}
	return nil
}

// requirePair rejects self edges and unknown users.
func (m *RelationshipManager) requirePair(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return apperror.InvalidOperation("user %d cannot befriend themselves", actorID)
	}
	if _, err := m.users.GetUser(ctx, actorID); err != nil {
		return storeError(err)
	}
	if _, err := m.users.GetUser(ctx, targetID); err != nil {
		return storeError(err)
	}
	return nil
}

func (m *RelationshipManager) publish(ctx context.Context, t queue.EventType, actorID, targetID uint64) {
	ev := queue.NewActivityEvent(t, actorID, targetID)
	if err := m.events.Publish(ctx, ev); err != nil {
		logger.Warn("activity event not published", "type", string(t), "actor_id", actorID, "target_id", targetID, "error", err)
	}
}
