package categories_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/categories"
	"github.com/warungpos/warungpos/internal/platform/storage"
	"github.com/warungpos/warungpos/internal/shared"
)

type memoryRepo struct {
	nextID int64
	rows   map[int64]categories.Category
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, rows: map[int64]categories.Category{}}
}

func (m *memoryRepo) List(ctx context.Context, search string, page shared.Pagination) ([]categories.Category, int, error) {
	var out []categories.Category
	for _, c := range m.rows {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) All(ctx context.Context) ([]categories.Category, error) {
	var out []categories.Category
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (categories.Category, error) {
	c, ok := m.rows[id]
	if !ok {
		return categories.Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	c.ID = m.nextID
	m.nextID++
	m.rows[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(ctx context.Context, c categories.Category) error {
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

func (m *memoryRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	for id, c := range m.rows {
		if id != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func newService(t *testing.T) (*categories.Service, *memoryRepo, *storage.Disk) {
	t.Helper()
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	repo := newMemoryRepo()
	return categories.NewService(repo, disk, nil), repo, disk
}

func pngUpload(name string) *shared.Upload {
	return &shared.Upload{Filename: name, Size: 64, Content: strings.NewReader("png-bytes")}
}

func TestCreateStoresRowAndFile(t *testing.T) {
	svc, repo, disk := newService(t)

	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name:        "Drinks",
		Description: "Beverages",
		Image:       pngUpload("valid.png"),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, disk.Exists(created.Image))
	require.Equal(t, "Drinks", repo.rows[created.ID].Name)
}

func TestCreateDuplicateNameWritesNothing(t *testing.T) {
	svc, repo, disk := newService(t)

	first, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "More beverages", Image: pngUpload("other.png"),
	})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Contains(t, fieldErrs, "name")
	require.Len(t, repo.rows, 1)
	// Only the first image may exist in the file area.
	require.True(t, disk.Exists(first.Image))
	entries, listErr := diskEntries(disk)
	require.NoError(t, listErr)
	require.Len(t, entries, 1)
}

func TestCreateMissingFieldsWritesNothing(t *testing.T) {
	svc, repo, disk := newService(t)

	_, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "", Description: "", Image: nil,
	})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Contains(t, fieldErrs, "name")
	require.Contains(t, fieldErrs, "description")
	require.Contains(t, fieldErrs, "image")
	require.Empty(t, repo.rows)
	entries, listErr := diskEntries(disk)
	require.NoError(t, listErr)
	require.Empty(t, entries)
}

func TestCreateRejectsWrongExtensionAndSize(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages",
		Image: &shared.Upload{Filename: "notes.pdf", Size: 10, Content: strings.NewReader("x")},
	})
	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Contains(t, fieldErrs, "image")

	_, err = svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages",
		Image: &shared.Upload{Filename: "big.png", Size: shared.MaxImageKB*1024 + 1, Content: strings.NewReader("x")},
	})
	require.ErrorAs(t, err, &fieldErrs)
	require.Contains(t, fieldErrs, "image")
}

func TestUpdateWithoutImageKeepsFile(t *testing.T) {
	svc, repo, disk := newService(t)
	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)

	err = svc.Update(context.Background(), created.ID, categories.UpdateInput{
		Name: "Drinks", Description: "Cold beverages", Image: nil,
	})
	require.NoError(t, err)

	updated := repo.rows[created.ID]
	require.Equal(t, created.Image, updated.Image)
	require.Equal(t, "Cold beverages", updated.Description)
	require.True(t, disk.Exists(created.Image))
}

func TestUpdateWithImageReplacesFile(t *testing.T) {
	svc, repo, disk := newService(t)
	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)

	err = svc.Update(context.Background(), created.ID, categories.UpdateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("fresh.jpg"),
	})
	require.NoError(t, err)

	updated := repo.rows[created.ID]
	require.NotEqual(t, created.Image, updated.Image)
	require.False(t, disk.Exists(created.Image))
	require.True(t, disk.Exists(updated.Image))
}

func TestUpdateUniquenessExcludesSelf(t *testing.T) {
	svc, _, _ := newService(t)
	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)

	// Re-submitting the unchanged name must not trip uniqueness.
	err = svc.Update(context.Background(), created.ID, categories.UpdateInput{
		Name: "Drinks", Description: "Changed only the description",
	})
	require.NoError(t, err)
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.Update(context.Background(), 99, categories.UpdateInput{
		Name: "Ghost", Description: "Missing",
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	svc, repo, disk := newService(t)
	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Empty(t, repo.rows)
	require.False(t, disk.Exists(created.Image))
}

func TestDeleteSurvivesMissingFile(t *testing.T) {
	svc, repo, disk := newService(t)
	created, err := svc.Create(context.Background(), categories.CreateInput{
		Name: "Drinks", Description: "Beverages", Image: pngUpload("valid.png"),
	})
	require.NoError(t, err)
	require.NoError(t, disk.Delete(created.Image))

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Empty(t, repo.rows)
}

func TestDeleteMissingIDIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.Delete(context.Background(), 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func diskEntries(d *storage.Disk) ([]string, error) {
	entries, err := os.ReadDir(d.Root())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
