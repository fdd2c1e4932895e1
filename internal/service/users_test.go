package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/repository/memory"
	"github.com/gofrs/uuid/v5"
)

func TestUsers_ListAndGetHideHash(t *testing.T) {
	t.Parallel()
	repo := memory.NewUserRepo()
	c := newCreds(t, repo)
	s := NewUserService(repo)
	ctx := context.Background()

	u, err := c.Register(ctx, RegisterInput{Username: "bob", Email: "bob@x.com", Password: "pw1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: len=%d err=%v", len(list), err)
	}
	if list[0].PasswordHash != "" {
		t.Fatalf("List leaked hash")
	}
	got, err := s.Get(ctx, u.ID)
	if err != nil || got.PasswordHash != "" || got.Username != "bob" {
		t.Fatalf("Get: %+v %v", got, err)
	}

	stored, _, _ := repo.GetByID(context.Background(), u.ID)
	if stored.PasswordHash == "" {
		t.Fatalf("Public() mutated the stored record")
	}

	if _, err := s.Get(ctx, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
