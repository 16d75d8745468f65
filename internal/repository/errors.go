// Package repository defines the entity stores and the sentinel errors
// they return. Services translate these values into apperror codes;
// nothing above the service layer should compare against them.
package repository

import "errors"

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrFilmNotFound is returned when a film id does not exist.
var ErrFilmNotFound = errors.New("film not found")

// ErrFriendshipNotFound is returned when the directed edge
// (actor → target) does not exist.
var ErrFriendshipNotFound = errors.New("friendship not found")
