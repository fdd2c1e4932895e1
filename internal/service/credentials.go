package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgcrypto "github.com/and161185/openstudio/internal/crypto"
	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// CredentialStore registers users and verifies their passwords.
type CredentialStore struct {
	users  repository.UserRepository
	hasher *pkgcrypto.Hasher
	now    func() time.Time

	// regMu makes the uniqueness check and the save one step.
	regMu sync.Mutex
	// dummy is verified for unknown users so both failure paths cost the same.
	dummy string
}

// NewCredentialStore constructs a CredentialStore.
func NewCredentialStore(users repository.UserRepository, hasher *pkgcrypto.Hasher) (*CredentialStore, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("%w: dummy hash: %v", errs.ErrInternal, err)
	}
	return &CredentialStore{users: users, hasher: hasher, now: time.Now, dummy: dummy}, nil
}

// Register creates a user. Same username OR same email as an existing user is a conflict.
func (c *CredentialStore) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return model.User{}, fmt.Errorf("%w: empty username/email/password", errs.ErrInvalidArgument)
	}

	hash, err := c.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: hash password: %v", errs.ErrInternal, err)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: user id: %v", errs.ErrInternal, err)
	}

	c.regMu.Lock()
	defer c.regMu.Unlock()

	_, taken, err := c.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, errs.ErrAlreadyExists
	}

	now := c.now().UTC()
	u := model.User{
		ID:           uid,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.users.Save(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Verify authenticates identifier (username, or email when no username matches)
// with password. Unknown user and wrong password are both errs.ErrUnauthorized.
func (c *CredentialStore) Verify(ctx context.Context, identifier, password string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return model.User{}, errs.ErrUnauthorized
	}

	u, found, err := c.lookup(ctx, identifier)
	if err != nil {
		return model.User{}, err
	}
	if !found {
		_, _ = c.hasher.Verify(password, c.dummy)
		return model.User{}, errs.ErrUnauthorized
	}

	ok, err := c.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: stored hash for %s: %v", errs.ErrInternal, u.ID, err)
	}
	if !ok {
		return model.User{}, errs.ErrUnauthorized
	}
	return u, nil
}

// lookup resolves identifier as a username first, then as an email.
func (c *CredentialStore) lookup(ctx context.Context, identifier string) (model.User, bool, error) {
	u, found, err := c.users.FindByUsername(ctx, identifier)
	if err != nil || found {
		return u, found, err
	}
	return c.users.FindByEmail(ctx, identifier)
}
