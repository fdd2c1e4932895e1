// Package memory contains in-memory implementations of repository interfaces.
package memory

import (
	"context"

	"github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/store"
	"github.com/gofrs/uuid/v5"
)

// entityRepo adapts a store.Store keyed by uuid to repository.Repository.
// Stores never block, so ctx is accepted for the interface and not consulted.
type entityRepo[T any] struct {
	s *store.Store[uuid.UUID, T]
}

func (r entityRepo[T]) Save(_ context.Context, v T) error {
	return r.s.Save(v)
}

func (r entityRepo[T]) List(_ context.Context) ([]T, error) {
	return r.s.List()
}

func (r entityRepo[T]) GetByID(_ context.Context, id uuid.UUID) (T, bool, error) {
	return r.s.Get(id)
}

func (r entityRepo[T]) Update(_ context.Context, v T) (bool, error) {
	return r.s.Update(v)
}

func (r entityRepo[T]) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	return r.s.Delete(id)
}

// UserRepo implements UserRepository in memory.
type UserRepo struct{ entityRepo[model.User] }

// NewUserRepo constructs an empty user repository.
func NewUserRepo() *UserRepo {
	s := store.New(func(u model.User) uuid.UUID { return u.ID }, store.WithClone(model.User.Clone))
	return &UserRepo{entityRepo[model.User]{s: s}}
}

// FindByUsername selects a user by username.
func (r *UserRepo) FindByUsername(_ context.Context, username string) (model.User, bool, error) {
	return r.s.Find(func(u model.User) bool { return u.Username == username })
}

// FindByEmail selects a user by email.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (model.User, bool, error) {
	return r.s.Find(func(u model.User) bool { return u.Email == email })
}

// FindByUsernameOrEmail selects the first user whose username or email
// equals either value.
func (r *UserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (model.User, bool, error) {
	return r.s.Find(func(u model.User) bool {
		return u.Username == username || u.Email == email ||
			u.Username == email || u.Email == username
	})
}

// ProjectRepo implements ProjectRepository in memory.
type ProjectRepo struct{ entityRepo[model.Project] }

// NewProjectRepo constructs an empty project repository.
func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{entityRepo[model.Project]{s: store.New(func(p model.Project) uuid.UUID { return p.ID })}}
}

// IssueRepo implements IssueRepository in memory.
type IssueRepo struct{ entityRepo[model.Issue] }

// NewIssueRepo constructs an empty issue repository.
func NewIssueRepo() *IssueRepo {
	return &IssueRepo{entityRepo[model.Issue]{s: store.New(func(i model.Issue) uuid.UUID { return i.ID })}}
}

// ListByProject filters issues by project.
func (r *IssueRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]model.Issue, error) {
	return r.s.Filter(func(i model.Issue) bool { return i.ProjectID == projectID })
}

// MemberRepo implements MemberRepository on top of store.MembershipIndex.
type MemberRepo struct{ ix *store.MembershipIndex }

// NewMemberRepo constructs an empty membership repository.
func NewMemberRepo() *MemberRepo { return &MemberRepo{ix: store.NewMembershipIndex()} }

func (r *MemberRepo) Add(_ context.Context, m model.ProjectMember) error { return r.ix.Add(m) }

func (r *MemberRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	return r.ix.ListByProject(projectID)
}

func (r *MemberRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.ProjectMember, error) {
	return r.ix.ListByUser(userID)
}

func (r *MemberRepo) RoleOf(_ context.Context, projectID, userID uuid.UUID) (model.ProjectRole, bool, error) {
	return r.ix.RoleOf(projectID, userID)
}

func (r *MemberRepo) Remove(_ context.Context, projectID, userID uuid.UUID) (int, error) {
	return r.ix.Remove(projectID, userID)
}
