package store

import (
	"sync"
	"testing"
	"time"

	"github.com/and161185/openstudio/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func member(project, user uuid.UUID, role model.ProjectRole) model.ProjectMember {
	return model.ProjectMember{ProjectID: project, UserID: user, Role: role, JoinedAt: time.Now().UTC()}
}

func TestMembership_AddAndList(t *testing.T) {
	t.Parallel()
	x := NewMembershipIndex()
	p1, p2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	u1, u2 := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	require.NoError(t, x.Add(member(p1, u1, model.RoleOwner)))
	require.NoError(t, x.Add(member(p1, u2, model.RoleViewer)))
	require.NoError(t, x.Add(member(p2, u1, model.RoleContributor)))

	got, err := x.ListByProject(p1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, u1, got[0].UserID)
	require.Equal(t, u2, got[1].UserID)

	got, err = x.ListByUser(u1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = x.ListByProject(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMembership_DuplicatesKeptAndRemovedTogether(t *testing.T) {
	t.Parallel()
	x := NewMembershipIndex()
	p, u, other := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	require.NoError(t, x.Add(member(p, u, model.RoleOwner)))
	require.NoError(t, x.Add(member(p, other, model.RoleViewer)))
	require.NoError(t, x.Add(member(p, u, model.RoleMaintainer)))

	got, err := x.ListByProject(p)
	require.NoError(t, err)
	require.Len(t, got, 3)

	role, ok, err := x.RoleOf(p, u)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.RoleOwner, role)

	n, err := x.Remove(p, u)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err = x.ListByProject(p)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, other, got[0].UserID)

	n, err = x.Remove(p, u)
	require.NoError(t, err)
	require.Zero(t, n)

	_, ok, err = x.RoleOf(p, u)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMembership_ListIsSnapshot(t *testing.T) {
	t.Parallel()
	x := NewMembershipIndex()
	p, u := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	require.NoError(t, x.Add(member(p, u, model.RoleViewer)))

	got, err := x.ListByProject(p)
	require.NoError(t, err)
	got[0].Role = model.RoleOwner

	role, _, err := x.RoleOf(p, u)
	require.NoError(t, err)
	require.Equal(t, model.RoleViewer, role)
}

func TestMembership_ConcurrentAdd(t *testing.T) {
	t.Parallel()
	x := NewMembershipIndex()
	p := uuid.Must(uuid.NewV4())

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = x.Add(member(p, uuid.Must(uuid.NewV4()), model.RoleContributor))
		}()
	}
	wg.Wait()

	got, err := x.ListByProject(p)
	require.NoError(t, err)
	require.Len(t, got, 64)
}
