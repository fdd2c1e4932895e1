package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository/memory"
	"github.com/gofrs/uuid/v5"
)

func TestMembers_AddListRemove(t *testing.T) {
	t.Parallel()
	s := NewMemberService(memory.NewMemberRepo())
	ctx := context.Background()
	pid, uid, other := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	m, err := s.Add(ctx, AddMemberInput{UserID: uid, ProjectID: pid, Role: model.RoleOwner})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m.JoinedAt.IsZero() {
		t.Fatalf("JoinedAt not set")
	}
	if _, err := s.Add(ctx, AddMemberInput{UserID: uid, ProjectID: pid, Role: model.RoleViewer}); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if _, err := s.Add(ctx, AddMemberInput{UserID: other, ProjectID: pid, Role: model.RoleContributor}); err != nil {
		t.Fatalf("Add other: %v", err)
	}

	list, err := s.List(ctx, pid)
	if err != nil || len(list) != 3 {
		t.Fatalf("List: len=%d err=%v", len(list), err)
	}
	role, err := s.RoleOf(ctx, pid, uid)
	if err != nil || role != model.RoleOwner {
		t.Fatalf("RoleOf: %s %v", role, err)
	}

	n, err := s.Remove(ctx, pid, uid)
	if err != nil || n != 2 {
		t.Fatalf("Remove: n=%d err=%v", n, err)
	}
	if n, err := s.Remove(ctx, pid, uid); err != nil || n != 0 {
		t.Fatalf("Remove again: n=%d err=%v", n, err)
	}
	if _, err := s.RoleOf(ctx, pid, uid); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("RoleOf removed: want ErrNotFound, got %v", err)
	}
	list, _ = s.List(ctx, pid)
	if len(list) != 1 || list[0].UserID != other {
		t.Fatalf("List after remove: %+v", list)
	}
}

func TestMembers_Validation(t *testing.T) {
	t.Parallel()
	s := NewMemberService(memory.NewMemberRepo())
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	for name, in := range map[string]AddMemberInput{
		"nil user":    {ProjectID: id, Role: model.RoleViewer},
		"nil project": {UserID: id, Role: model.RoleViewer},
		"bad role":    {UserID: id, ProjectID: id, Role: "Admin"},
	} {
		if _, err := s.Add(ctx, in); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Fatalf("%s: want ErrInvalidArgument, got %v", name, err)
		}
	}
	if _, err := s.List(ctx, uuid.Nil); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("List(nil): want ErrInvalidArgument, got %v", err)
	}
}
