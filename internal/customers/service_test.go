package customers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/customers"
	"github.com/warungpos/warungpos/internal/shared"
)

type memoryRepo struct {
	nextID int64
	rows   map[int64]customers.Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, rows: map[int64]customers.Customer{}}
}

func (m *memoryRepo) List(ctx context.Context, search string, page shared.Pagination) ([]customers.Customer, int, error) {
	var out []customers.Customer
	for _, c := range m.rows {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) All(ctx context.Context) ([]customers.Customer, error) {
	var out []customers.Customer
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (customers.Customer, error) {
	c, ok := m.rows[id]
	if !ok {
		return customers.Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(ctx context.Context, c customers.Customer) (customers.Customer, error) {
	c.ID = m.nextID
	m.nextID++
	m.rows[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(ctx context.Context, c customers.Customer) error {
	if _, ok := m.rows[c.ID]; !ok {
		return shared.ErrNotFound
	}
	m.rows[c.ID] = c
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func validInput() customers.Input {
	return customers.Input{
		Name:    "Budi Santoso",
		Phone:   "081234567890",
		Address: "Jl. Melati No. 7",
	}
}

func TestCreateCustomer(t *testing.T) {
	repo := newMemoryRepo()
	svc := customers.NewService(repo, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", repo.rows[created.ID].Name)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := customers.NewService(repo, nil)

	_, err := svc.Create(context.Background(), customers.Input{Name: "  "})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "phone")
	assert.Contains(t, fieldErrs, "address")
	assert.Empty(t, repo.rows)
}

func TestUpdateMissingCustomerShortCircuits(t *testing.T) {
	svc := customers.NewService(newMemoryRepo(), nil)

	// NotFound wins over validation: the blank input never gets inspected.
	err := svc.Update(context.Background(), 999, customers.Input{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateCustomer(t *testing.T) {
	repo := newMemoryRepo()
	svc := customers.NewService(repo, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Address = "Jl. Kenanga No. 12"
	require.NoError(t, svc.Update(context.Background(), created.ID, in))
	assert.Equal(t, "Jl. Kenanga No. 12", repo.rows[created.ID].Address)
}

func TestDeleteMissingCustomer(t *testing.T) {
	svc := customers.NewService(newMemoryRepo(), nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), 999), shared.ErrNotFound)
}
