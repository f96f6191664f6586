package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warungpos/warungpos/internal/shared"
)

type memoryRepo struct {
	seq   int64
	users map[int64]User
	roles map[int64][]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]User{}, roles: map[int64][]int64{}}
}

func (m *memoryRepo) List(_ context.Context, search string, page shared.Pagination) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if search == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(_ context.Context, u User, roleIDs []int64) (User, error) {
	m.seq++
	u.ID = m.seq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	m.roles[u.ID] = append([]int64(nil), roleIDs...)
	return u, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, name, email string, passwordHash *string, roleIDs []int64) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Name = name
	u.Email = email
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	u.UpdatedAt = time.Now()
	m.users[id] = u

	// mirror the symmetric-difference sync: the stored set ends up equal to
	// the submitted set, duplicates collapsed
	next := map[int64]struct{}{}
	for _, rid := range roleIDs {
		next[rid] = struct{}{}
	}
	synced := make([]int64, 0, len(next))
	for rid := range next {
		synced = append(synced, rid)
	}
	m.roles[id] = synced
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	delete(m.roles, id)
	return nil
}

func (m *memoryRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	for id, u := range m.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func validInput() Input {
	return Input{
		Name:                 "Kasir Satu",
		Email:                "kasir@warung.test",
		Password:             "rahasia-aman",
		PasswordConfirmation: "rahasia-aman",
		RoleIDs:              []int64{1},
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	stored := repo.users[created.ID]
	assert.NotEqual(t, "rahasia-aman", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("rahasia-aman")))
	assert.Equal(t, []int64{1}, repo.roles[created.ID])
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Kasir Dua"
	_, err = svc.Create(context.Background(), in)

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "email")
	assert.Len(t, repo.users, 1)
}

func TestCreateRejectsMismatchedConfirmation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	in := validInput()
	in.PasswordConfirmation = "berbeda-sama-sekali"
	_, err := svc.Create(context.Background(), in)

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "password")
	assert.Empty(t, repo.users)
}

func TestUpdateBlankPasswordKeepsHash(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	originalHash := repo.users[created.ID].PasswordHash

	in := validInput()
	in.Name = "Kasir Diganti"
	in.Password = ""
	in.PasswordConfirmation = ""
	require.NoError(t, svc.Update(context.Background(), created.ID, in))

	updated := repo.users[created.ID]
	assert.Equal(t, "Kasir Diganti", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestUpdateNewPasswordChangesHash(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	originalHash := repo.users[created.ID].PasswordHash

	in := validInput()
	in.Password = "rahasia-baru"
	in.PasswordConfirmation = "rahasia-baru"
	require.NoError(t, svc.Update(context.Background(), created.ID, in))

	updated := repo.users[created.ID]
	assert.NotEqual(t, originalHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("rahasia-baru")))
}

func TestUpdateRoleSyncIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Password = ""
	in.PasswordConfirmation = ""
	in.RoleIDs = []int64{1, 2}
	require.NoError(t, svc.Update(context.Background(), created.ID, in))
	require.NoError(t, svc.Update(context.Background(), created.ID, in))

	assert.ElementsMatch(t, []int64{1, 2}, repo.roles[created.ID])
}

func TestUpdateEmailUniquenessExcludesSelf(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Password = ""
	in.PasswordConfirmation = ""
	assert.NoError(t, svc.Update(context.Background(), created.ID, in))
}

func TestUpdateMissingUser(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	in := validInput()
	in.Password = ""
	in.PasswordConfirmation = ""
	err := svc.Update(context.Background(), 999, in)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), 999), shared.ErrNotFound)
}

type capturingAudit struct {
	entries []shared.AuditLog
}

func (c *capturingAudit) Record(_ context.Context, log shared.AuditLog) error {
	c.entries = append(c.entries, log)
	return nil
}

func TestAuditTrailFollowsWrites(t *testing.T) {
	repo := newMemoryRepo()
	audit := &capturingAudit{}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	require.Len(t, audit.entries, 2)
	assert.Equal(t, "users.create", audit.entries[0].Action)
	assert.Equal(t, "users.delete", audit.entries[1].Action)
	assert.Equal(t, "users", audit.entries[0].Entity)
}

func TestCreateAcceptsShortPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	in := validInput()
	in.Password = "abc123"
	in.PasswordConfirmation = "abc123"
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	stored := repo.users[created.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("abc123")))
}

func TestCreateWithoutRoles(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	in := validInput()
	in.RoleIDs = nil
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, repo.roles[created.ID])
}
