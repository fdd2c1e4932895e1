// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/openstudio/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Repository is the keyed CRUD surface shared by every entity store.
//
// Update replaces an existing record and reports false when none matches;
// it never inserts. Delete reports false when nothing was removed.
type Repository[T any] interface {
	Save(ctx context.Context, v T) error
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id uuid.UUID) (T, bool, error)
	Update(ctx context.Context, v T) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepository adds the lookups needed by credential checks.
type UserRepository interface {
	Repository[model.User]
	// FindByUsername returns the user with exactly this username.
	FindByUsername(ctx context.Context, username string) (model.User, bool, error)
	// FindByEmail returns the user with exactly this email.
	FindByEmail(ctx context.Context, email string) (model.User, bool, error)
	// FindByUsernameOrEmail returns any user whose username or email equals
	// either value, so a username can never shadow another user's email.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (model.User, bool, error)
}

// ProjectRepository stores projects.
type ProjectRepository interface {
	Repository[model.Project]
}
