package store

import (
	"sync"

	"github.com/and161185/openstudio/internal/model"
	"github.com/gofrs/uuid/v5"
)

// MembershipIndex stores project memberships keyed by (project, user).
// Duplicate rows for the same pair are kept; uniqueness is the caller's concern.
type MembershipIndex struct {
	mu   sync.RWMutex
	rows []model.ProjectMember
}

// NewMembershipIndex returns an empty index.
func NewMembershipIndex() *MembershipIndex { return &MembershipIndex{} }

// Add appends m without checking for an existing row.
func (x *MembershipIndex) Add(m model.ProjectMember) error {
	return guard(&x.mu, func() error {
		x.rows = append(x.rows, m)
		return nil
	})
}

// ListByProject returns the rows of projectID in insertion order.
func (x *MembershipIndex) ListByProject(projectID uuid.UUID) ([]model.ProjectMember, error) {
	return x.filter(func(m model.ProjectMember) bool { return m.ProjectID == projectID })
}

// ListByUser returns the rows of userID in insertion order.
func (x *MembershipIndex) ListByUser(userID uuid.UUID) ([]model.ProjectMember, error) {
	return x.filter(func(m model.ProjectMember) bool { return m.UserID == userID })
}

// RoleOf returns the role of the first row for (projectID, userID).
func (x *MembershipIndex) RoleOf(projectID, userID uuid.UUID) (model.ProjectRole, bool, error) {
	var (
		role model.ProjectRole
		ok   bool
	)
	err := guard(x.mu.RLocker(), func() error {
		for _, m := range x.rows {
			if m.ProjectID == projectID && m.UserID == userID {
				role, ok = m.Role, true
				return nil
			}
		}
		return nil
	})
	return role, ok, err
}

// Remove deletes every row for (projectID, userID) and returns how many went.
func (x *MembershipIndex) Remove(projectID, userID uuid.UUID) (int, error) {
	var n int
	err := guard(&x.mu, func() error {
		kept := x.rows[:0]
		for _, m := range x.rows {
			if m.ProjectID == projectID && m.UserID == userID {
				n++
				continue
			}
			kept = append(kept, m)
		}
		clear(x.rows[len(kept):])
		x.rows = kept
		return nil
	})
	return n, err
}

func (x *MembershipIndex) filter(pred func(model.ProjectMember) bool) ([]model.ProjectMember, error) {
	var out []model.ProjectMember
	err := guard(x.mu.RLocker(), func() error {
		for _, m := range x.rows {
			if pred(m) {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}
