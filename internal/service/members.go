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

// AddMemberInput is a validated membership request.
type AddMemberInput struct {
	UserID    uuid.UUID
	ProjectID uuid.UUID
	Role      model.ProjectRole
}

// MemberService defines membership use cases. It stores roles but makes no
// authorization decisions with them.
type MemberService interface {
	Add(ctx context.Context, in AddMemberInput) (model.ProjectMember, error)
	List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
	// Remove deletes every membership row of the pair; removing nothing is not an error.
	Remove(ctx context.Context, projectID, userID uuid.UUID) (int, error)
	RoleOf(ctx context.Context, projectID, userID uuid.UUID) (model.ProjectRole, error)
}

type MemberServiceImpl struct {
	repo repository.MemberRepository
	now  func() time.Time
}

// NewMemberService constructs MemberService.
func NewMemberService(repo repository.MemberRepository) *MemberServiceImpl {
	return &MemberServiceImpl{repo: repo, now: time.Now}
}

// Add appends a membership row stamped with JoinedAt. Existing rows for the
// same pair are not checked.
func (s *MemberServiceImpl) Add(ctx context.Context, in AddMemberInput) (model.ProjectMember, error) {
	if in.UserID == uuid.Nil || in.ProjectID == uuid.Nil {
		return model.ProjectMember{}, fmt.Errorf("%w: empty user_id/project_id", errs.ErrInvalidArgument)
	}
	if !in.Role.Valid() {
		return model.ProjectMember{}, fmt.Errorf("%w: role %q", errs.ErrInvalidArgument, in.Role)
	}
	m := model.ProjectMember{
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Role:      in.Role,
		JoinedAt:  s.now().UTC(),
	}
	if err := s.repo.Add(ctx, m); err != nil {
		return model.ProjectMember{}, err
	}
	return m, nil
}

// List returns the memberships of a project.
func (s *MemberServiceImpl) List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty project_id", errs.ErrInvalidArgument)
	}
	return s.repo.ListByProject(ctx, projectID)
}

// Remove deletes all rows for the pair and reports how many were removed.
func (s *MemberServiceImpl) Remove(ctx context.Context, projectID, userID uuid.UUID) (int, error) {
	return s.repo.Remove(ctx, projectID, userID)
}

// RoleOf returns the user's role in the project or errs.ErrNotFound.
func (s *MemberServiceImpl) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (model.ProjectRole, error) {
	role, ok, err := s.repo.RoleOf(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.ErrNotFound
	}
	return role, nil
}
