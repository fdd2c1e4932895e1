package service

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// CreateIssueInput is a validated create request.
type CreateIssueInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
}

// UpdateIssueInput carries the fields to change; nil leaves a field as is.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Status      *model.IssueStatus
}

// IssueService defines issue use cases.
type IssueService interface {
	Create(ctx context.Context, in CreateIssueInput) (model.Issue, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error)
	Get(ctx context.Context, id uuid.UUID) (model.Issue, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateIssueInput) (model.Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type IssueServiceImpl struct {
	repo repository.IssueRepository
	now  func() time.Time
}

// NewIssueService constructs IssueService.
func NewIssueService(repo repository.IssueRepository) *IssueServiceImpl {
	return &IssueServiceImpl{repo: repo, now: time.Now}
}

// Create stores an Open issue. ProjectID is not checked against the project store.
func (s *IssueServiceImpl) Create(ctx context.Context, in CreateIssueInput) (model.Issue, error) {
	if in.ProjectID == uuid.Nil || in.Title == "" {
		return model.Issue{}, fmt.Errorf("%w: empty project_id/title", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Issue{}, fmt.Errorf("%w: issue id: %v", errs.ErrInternal, err)
	}
	now := s.now().UTC()
	is := model.Issue{
		ID:          id,
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.IssueOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, is); err != nil {
		return model.Issue{}, err
	}
	return is, nil
}

// ListByProject returns the issues of a project.
func (s *IssueServiceImpl) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty project_id", errs.ErrInvalidArgument)
	}
	return s.repo.ListByProject(ctx, projectID)
}

// Get returns one issue or errs.ErrNotFound.
func (s *IssueServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.Issue, error) {
	is, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Issue{}, err
	}
	if !ok {
		return model.Issue{}, errs.ErrNotFound
	}
	return is, nil
}

// Update merges the non-nil fields, keeps ProjectID and CreatedAt, bumps UpdatedAt.
func (s *IssueServiceImpl) Update(ctx context.Context, id uuid.UUID, in UpdateIssueInput) (model.Issue, error) {
	if in.Status != nil && !in.Status.Valid() {
		return model.Issue{}, fmt.Errorf("%w: status %q", errs.ErrInvalidArgument, *in.Status)
	}
	is, err := s.Get(ctx, id)
	if err != nil {
		return model.Issue{}, err
	}
	if in.Title != nil {
		is.Title = *in.Title
	}
	if in.Description != nil {
		is.Description = *in.Description
	}
	if in.Status != nil {
		is.Status = *in.Status
	}
	is.UpdatedAt = s.now().UTC()
	ok, err := s.repo.Update(ctx, is)
	if err != nil {
		return model.Issue{}, err
	}
	if !ok {
		return model.Issue{}, errs.ErrNotFound
	}
	return is, nil
}

// Delete removes an issue or returns errs.ErrNotFound.
func (s *IssueServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	return nil
}
