package service

import (
	"context"
	"errors"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/utils"
)

// UserService creates, updates and reads users. Every write goes
// through the Gate first.
type UserService struct {
	store      repository.UserStore
	gate       *Gate
	bcryptCost int
}

func NewUserService(store repository.UserStore, gate *Gate, bcryptCost int) *UserService {
	return &UserService{store: store, gate: gate, bcryptCost: bcryptCost}
}

// Create validates u, hashes password when given and stores the user.
func (s *UserService) Create(ctx context.Context, u model.User, password string) (model.User, error) {
	if err := s.gate.ValidateUser(&u); err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	if password != "" {
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return model.User{}, apperror.Wrap(err, apperror.CodeInternal, "hash password")
		}
		u.PasswordHash = hash
	}
	created, err := s.store.CreateUser(ctx, u)
	return created, storeError(err)
}

// Update replaces the user's fields. An empty password keeps the stored
// hash; friendship edges are never touched.
func (s *UserService) Update(ctx context.Context, u model.User, password string) (model.User, error) {
	if err := s.gate.ValidateUser(&u); err != nil {
		return model.User{}, err
	}
	cur, err := s.store.GetUser(ctx, u.ID)
	if err != nil {
		return model.User{}, storeError(err)
	}
	u.PasswordHash = cur.PasswordHash
	if password != "" {
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return model.User{}, apperror.Wrap(err, apperror.CodeInternal, "hash password")
		}
		u.PasswordHash = hash
	}
	updated, err := s.store.UpdateUser(ctx, u)
	return updated, storeError(err)
}

func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	return u, storeError(err)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	us, err := s.store.ListUsers(ctx)
	return us, storeError(err)
}

// Authenticate checks login and password. Unknown logins, users without
// a password and wrong passwords all yield the same UNAUTHORIZED error.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (model.User, error) {
	invalid := apperror.New(apperror.CodeUnauthorized, "invalid credentials")
	u, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, invalid
		}
		return model.User{}, storeError(err)
	}
	if u.PasswordHash == "" || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, invalid
	}
	return u, nil
}
