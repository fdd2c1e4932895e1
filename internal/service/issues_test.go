package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository/memory"
	"github.com/gofrs/uuid/v5"
)

func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestIssues_CreateListByProject(t *testing.T) {
	t.Parallel()
	s := NewIssueService(memory.NewIssueRepo())
	ctx := context.Background()
	p1, p2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	is, err := s.Create(ctx, CreateIssueInput{ProjectID: p1, Title: "crash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if is.Status != model.IssueOpen || !is.CreatedAt.Equal(is.UpdatedAt) {
		t.Fatalf("bad new issue: %+v", is)
	}
	if _, err := s.Create(ctx, CreateIssueInput{ProjectID: p2, Title: "other"}); err != nil {
		t.Fatalf("Create(p2): %v", err)
	}

	list, err := s.ListByProject(ctx, p1)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(list) != 1 || list[0].ID != is.ID {
		t.Fatalf("ListByProject(p1)=%+v", list)
	}

	if _, err := s.Create(ctx, CreateIssueInput{Title: "x"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for nil project, got %v", err)
	}
	if _, err := s.ListByProject(ctx, uuid.Nil); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestIssues_UpdateKeepsIdentityAndBumpsUpdatedAt(t *testing.T) {
	t.Parallel()
	s := NewIssueService(memory.NewIssueRepo())
	s.now = stepClock(time.Unix(1_700_000_000, 0))
	ctx := context.Background()
	pid := uuid.Must(uuid.NewV4())

	is, _ := s.Create(ctx, CreateIssueInput{ProjectID: pid, Title: "t", Description: "d"})
	got, err := s.Update(ctx, is.ID, UpdateIssueInput{Status: ptr(model.IssueInProgress)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != model.IssueInProgress || got.Title != "t" || got.Description != "d" {
		t.Fatalf("merge: %+v", got)
	}
	if got.ProjectID != pid || !got.CreatedAt.Equal(is.CreatedAt) {
		t.Fatalf("identity changed: %+v", got)
	}
	if !got.UpdatedAt.After(is.UpdatedAt) {
		t.Fatalf("UpdatedAt not bumped: %v <= %v", got.UpdatedAt, is.UpdatedAt)
	}

	bad := model.IssueStatus("Done")
	if _, err := s.Update(ctx, is.ID, UpdateIssueInput{Status: &bad}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestIssues_GetDeleteMissing(t *testing.T) {
	t.Parallel()
	s := NewIssueService(memory.NewIssueRepo())
	ctx := context.Background()
	missing := uuid.Must(uuid.NewV4())

	if _, err := s.Get(ctx, missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Get: want ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, missing, UpdateIssueInput{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Update: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Delete: want ErrNotFound, got %v", err)
	}

	is, _ := s.Create(ctx, CreateIssueInput{ProjectID: uuid.Must(uuid.NewV4()), Title: "t"})
	if err := s.Delete(ctx, is.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, is.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second Delete: want ErrNotFound, got %v", err)
	}
}
