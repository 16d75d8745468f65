package model

import "time"

// FriendshipStatus is the state of a directed friendship edge.
type FriendshipStatus string

const (
	// FriendshipRequested is the initial state of a new edge.
	FriendshipRequested FriendshipStatus = "REQUESTED"
	// FriendshipConfirmed is reached through an explicit confirmation.
	FriendshipConfirmed FriendshipStatus = "CONFIRMED"
)

// Valid reports whether s is one of the known statuses.
func (s FriendshipStatus) Valid() bool {
	return s == FriendshipRequested || s == FriendshipConfirmed
}

// User represents an application user record as stored in the
// `users` table. The json tags are omitted here because handlers
// define separate response types.
//
// Fields:
//  ID           – primary key identifier, assigned by the store.
//  Email        – contact address, must contain "@".
//  Login        – non-blank handle without whitespace.
//  Name         – display name; the login is substituted when blank.
//  Birthday     – date of birth (UTC midnight), never in the future.
//  PasswordHash – bcrypt hash, empty when the user has no password.
//  Friends      – outgoing friendship edges keyed by target user id.
type User struct {
	ID           uint64                      // users.id
	Email        string                      // users.email
	Login        string                      // users.login
	Name         string                      // users.name
	Birthday     time.Time                   // users.birthday
	PasswordHash string                      // users.password_hash (nullable)
	Friends      map[uint64]FriendshipStatus // user_friends rows where user_id = ID
}

// Clone returns a deep copy of the user so callers can hand records
// out of a store without sharing the friends map.
func (u User) Clone() User {
	out := u
	out.Friends = make(map[uint64]FriendshipStatus, len(u.Friends))
	for id, st := range u.Friends {
		out.Friends[id] = st
	}
	return out
}
