// Package queue carries activity events over RabbitMQ: the publisher used
// by the services and the consumer that writes them to the activity log.
package queue

import (
	"fmt"
	"time"
)

// EventType names a relationship change.
type EventType string

const (
	EventLikeAdded       EventType = "LIKE_ADDED"
	EventLikeRemoved     EventType = "LIKE_REMOVED"
	EventFriendRequested EventType = "FRIEND_REQUESTED"
	EventFriendConfirmed EventType = "FRIEND_CONFIRMED"
	EventFriendRemoved   EventType = "FRIEND_REMOVED"
)

// ActivityEvent is published after a like or friendship change has been
// stored. For likes ActorID is the user and TargetID the film; for
// friendships both are user ids, actor → target.
type ActivityEvent struct {
	Type       EventType `json:"type"`
	ActorID    uint64    `json:"actor_id"`
	TargetID   uint64    `json:"target_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewActivityEvent stamps an event with the current UTC time.
func NewActivityEvent(t EventType, actorID, targetID uint64) ActivityEvent {
	return ActivityEvent{Type: t, ActorID: actorID, TargetID: targetID, OccurredAt: time.Now().UTC()}
}

// Line renders the event as one activity.log line.
func (e ActivityEvent) Line() string {
	target := "user_id"
	if e.Type == EventLikeAdded || e.Type == EventLikeRemoved {
		target = "film_id"
	}
	return fmt.Sprintf("[%s] %s | user_id=%d | %s=%d\n",
		e.OccurredAt.Format(time.RFC3339), e.Type, e.ActorID, target, e.TargetID)
}
