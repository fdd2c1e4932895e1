package repository

import (
	"context"

	"github.com/and161185/openstudio/internal/model"
	"github.com/gofrs/uuid/v5"
)

// IssueRepository stores issues. ProjectID is not integrity-checked.
type IssueRepository interface {
	Repository[model.Issue]
	// ListByProject returns the issues referencing projectID.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Issue, error)
}

// MemberRepository stores project memberships keyed by (project, user).
// Duplicate rows are accepted.
type MemberRepository interface {
	Add(ctx context.Context, m model.ProjectMember) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ProjectMember, error)
	RoleOf(ctx context.Context, projectID, userID uuid.UUID) (model.ProjectRole, bool, error)
	// Remove deletes every row for the pair and returns the count.
	Remove(ctx context.Context, projectID, userID uuid.UUID) (int, error)
}
