package service

import (
	"context"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// UserService exposes read access to accounts. Returned users carry no hash.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
}

type UserServiceImpl struct {
	repo repository.UserRepository
}

// NewUserService constructs UserService.
func NewUserService(repo repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

// List returns all users without password hashes.
func (s *UserServiceImpl) List(ctx context.Context) ([]model.User, error) {
	us, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range us {
		us[i] = us[i].Public()
	}
	return us, nil
}

// Get returns one user without password hash, or errs.ErrNotFound.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u.Public(), nil
}
