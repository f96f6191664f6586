package roles

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

type memoryRepo struct {
	seq   int64
	roles map[int64]Role
	perms map[int64][]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{roles: map[int64]Role{}, perms: map[int64][]int64{}}
}

func (m *memoryRepo) List(_ context.Context, search string, page shared.Pagination) ([]Role, int, error) {
	var out []Role
	for _, r := range m.roles {
		if search == "" || strings.Contains(strings.ToLower(r.Name), strings.ToLower(search)) {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) All(_ context.Context) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) Create(_ context.Context, name string, permissionIDs []int64) (Role, error) {
	m.seq++
	r := Role{ID: m.seq, Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.roles[r.ID] = r
	m.perms[r.ID] = append([]int64(nil), permissionIDs...)
	return r, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, name string, permissionIDs []int64) error {
	r, ok := m.roles[id]
	if !ok {
		return shared.ErrNotFound
	}
	r.Name = name
	m.roles[id] = r

	// mirror the symmetric-difference sync: add missing, remove extra
	current := map[int64]bool{}
	for _, p := range m.perms[id] {
		current[p] = true
	}
	wanted := map[int64]bool{}
	for _, p := range permissionIDs {
		wanted[p] = true
	}
	var next []int64
	for _, p := range m.perms[id] {
		if wanted[p] {
			next = append(next, p)
		}
	}
	for _, p := range permissionIDs {
		if !current[p] {
			next = append(next, p)
		}
	}
	m.perms[id] = next
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.perms, id)
	return nil
}

func (m *memoryRepo) NameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, r := range m.roles {
		if r.ID != excludeID && strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func TestCreateRequiresNameAndPermissions(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Input{})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "permissions")
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Input{Name: "kasir", PermissionIDs: []int64{1}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{Name: "Kasir", PermissionIDs: []int64{1}})
	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "name")
}

func TestUpdateSyncsPermissionSet(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	role, err := svc.Create(context.Background(), Input{Name: "kasir", PermissionIDs: []int64{1, 2, 3}})
	require.NoError(t, err)

	require.NoError(t, svc.Update(context.Background(), role.ID, Input{Name: "kasir", PermissionIDs: []int64{2, 4}}))
	assert.ElementsMatch(t, []int64{2, 4}, repo.perms[role.ID])

	// repeating the same submission keeps the set stable
	require.NoError(t, svc.Update(context.Background(), role.ID, Input{Name: "kasir", PermissionIDs: []int64{2, 4}}))
	assert.ElementsMatch(t, []int64{2, 4}, repo.perms[role.ID])
}

func TestUpdateNameUniquenessExcludesSelf(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	role, err := svc.Create(context.Background(), Input{Name: "kasir", PermissionIDs: []int64{1}})
	require.NoError(t, err)

	assert.NoError(t, svc.Update(context.Background(), role.ID, Input{Name: "kasir", PermissionIDs: []int64{1}}))
}

func TestUpdateMissingRole(t *testing.T) {
	svc := NewService(newMemoryRepo())
	err := svc.Update(context.Background(), 99, Input{Name: "kasir", PermissionIDs: []int64{1}})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
