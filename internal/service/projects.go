package service

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/openstudio/internal/errs"
	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// CreateProjectInput is a validated create request.
type CreateProjectInput struct {
	Name        string
	Description string
}

// UpdateProjectInput carries the fields to change; nil leaves a field as is.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *model.ProjectStatus
	Visibility  *model.Visibility
}

// ProjectService defines project use cases.
type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, id uuid.UUID) (model.Project, error)
	// Update merges in over the stored record and replaces it.
	Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectServiceImpl struct {
	repo repository.ProjectRepository
	now  func() time.Time
	log  *zap.Logger
}

// NewProjectService constructs ProjectService. log may be nil.
func NewProjectService(repo repository.ProjectRepository, log *zap.Logger) *ProjectServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectServiceImpl{repo: repo, now: time.Now, log: log}
}

// Create stores a new Private/Draft project.
func (s *ProjectServiceImpl) Create(ctx context.Context, in CreateProjectInput) (model.Project, error) {
	if in.Name == "" {
		return model.Project{}, fmt.Errorf("%w: empty project name", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Project{}, fmt.Errorf("%w: project id: %v", errs.ErrInternal, err)
	}
	p := model.Project{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Visibility:  model.VisibilityPrivate,
		Status:      model.ProjectDraft,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return model.Project{}, err
	}
	s.log.Info("project created", zap.Stringer("project_id", p.ID))
	return p, nil
}

// List returns all projects.
func (s *ProjectServiceImpl) List(ctx context.Context) ([]model.Project, error) {
	return s.repo.List(ctx)
}

// Get returns one project or errs.ErrNotFound.
func (s *ProjectServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.Project, error) {
	p, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if !ok {
		return model.Project{}, errs.ErrNotFound
	}
	return p, nil
}

// Update reads the current record, applies the non-nil fields and writes it back.
// A delete racing between the read and the write yields errs.ErrNotFound.
func (s *ProjectServiceImpl) Update(ctx context.Context, id uuid.UUID, in UpdateProjectInput) (model.Project, error) {
	if in.Status != nil && !in.Status.Valid() {
		return model.Project{}, fmt.Errorf("%w: status %q", errs.ErrInvalidArgument, *in.Status)
	}
	if in.Visibility != nil && !in.Visibility.Valid() {
		return model.Project{}, fmt.Errorf("%w: visibility %q", errs.ErrInvalidArgument, *in.Visibility)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Visibility != nil {
		p.Visibility = *in.Visibility
	}
	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		return model.Project{}, err
	}
	if !ok {
		return model.Project{}, errs.ErrNotFound
	}
	return p, nil
}

// Delete removes a project or returns errs.ErrNotFound.
// Issues and memberships referencing it are left in place.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	s.log.Info("project deleted", zap.Stringer("project_id", id))
	return nil
}
