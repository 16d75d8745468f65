package service

import (
	"errors"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/repository"
)

// storeError maps repository sentinels onto the apperror taxonomy.
// Anything unrecognised is an internal failure.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.Wrap(err, apperror.CodeNotFound, "user not found")
	case errors.Is(err, repository.ErrFilmNotFound):
		return apperror.Wrap(err, apperror.CodeNotFound, "film not found")
	case errors.Is(err, repository.ErrFriendshipNotFound):
		return apperror.Wrap(err, apperror.CodeNotFound, "friendship not found")
	default:
		var ae *apperror.AppError
		if errors.As(err, &ae) {
			return err
		}
		return apperror.Wrap(err, apperror.CodeInternal, "storage failure")
	}
}
