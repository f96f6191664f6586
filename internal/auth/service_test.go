package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/warungpos/warungpos/internal/shared"
)

// memoryRepo stores emails lowercased, the way account creation writes them.
type memoryRepo struct {
	users map[string]*User
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func newRepoWithUser(t *testing.T, email, password string) *memoryRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &memoryRepo{users: map[string]*User{
		strings.ToLower(email): {ID: 1, Email: strings.ToLower(email), PasswordHash: string(hash)},
	}}
}

func TestAuthenticateIgnoresEmailCase(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "admin@warung.test", "rahasia"))

	user, err := svc.Authenticate(context.Background(), "Admin@Warung.Test", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "admin@warung.test", "rahasia"))

	_, err := svc.Authenticate(context.Background(), "admin@warung.test", "salah")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newRepoWithUser(t, "admin@warung.test", "rahasia"))

	_, err := svc.Authenticate(context.Background(), "lain@warung.test", "rahasia")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
