package service

import (
	"context"
	"testing"
	"time"

	pkgcrypto "github.com/and161185/openstudio/internal/crypto"
	"github.com/and161185/openstudio/internal/limiter"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository"
	"github.com/and161185/openstudio/internal/repository/memory"
	"github.com/and161185/openstudio/internal/token"
)

var cheap = pkgcrypto.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// failingUsers wraps a real repository and injects lookup/save errors.
type failingUsers struct {
	*memory.UserRepo

	findErr error
	saveErr error
}

var _ repository.UserRepository = (*failingUsers)(nil)

func (f *failingUsers) Save(ctx context.Context, u model.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.UserRepo.Save(ctx, u)
}
func (f *failingUsers) FindByUsername(ctx context.Context, s string) (model.User, bool, error) {
	if f.findErr != nil {
		return model.User{}, false, f.findErr
	}
	return f.UserRepo.FindByUsername(ctx, s)
}
func (f *failingUsers) FindByUsernameOrEmail(ctx context.Context, u, e string) (model.User, bool, error) {
	if f.findErr != nil {
		return model.User{}, false, f.findErr
	}
	return f.UserRepo.FindByUsernameOrEmail(ctx, u, e)
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
	keys         []string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, key string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.keys = append(l.keys, key)
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func newCreds(t *testing.T, users repository.UserRepository) *CredentialStore {
	t.Helper()
	c, err := NewCredentialStore(users, pkgcrypto.NewHasher(cheap))
	if err != nil {
		t.Fatalf("NewCredentialStore: %v", err)
	}
	return c
}

func newAuth(t *testing.T, users repository.UserRepository, lim limiter.Limiter) *AuthServiceImpl {
	t.Helper()
	tk, err := token.New([]byte("secret"))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return NewAuthService(newCreds(t, users), tk, lim, nil)
}

func ptr[T any](v T) *T { return &v }
