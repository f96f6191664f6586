package categories

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// ImageStore is the file area categories keep their image in.
type ImageStore interface {
	Store(src io.Reader, originalName string) (string, error)
	Delete(name string) error
}

// CreateInput carries the fields of a new category. Image is required.
type CreateInput struct {
	Name        string
	Description string
	Image       *shared.Upload
}

// UpdateInput carries updated fields. A nil Image means "keep the stored
// image"; it is never treated as clearing the field.
type UpdateInput struct {
	Name        string
	Description string
	Image       *shared.Upload
}

// Service owns category business rules.
type Service struct {
	repo   Repository
	images ImageStore
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, images ImageStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

// List returns one page of categories matching the optional search term.
func (s *Service) List(ctx context.Context, search string, page int) ([]Category, shared.Pagination, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, shared.PerPage, total), nil
}

// All returns every category for select inputs.
func (s *Service) All(ctx context.Context) ([]Category, error) {
	return s.repo.All(ctx)
}

// Get fetches one category.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the input, stores the image, then inserts the row. On a
// failed insert the stored file is removed again so a rejected request
// leaves nothing behind.
func (s *Service) Create(ctx context.Context, in CreateInput) (Category, error) {
	if errs, err := s.validate(ctx, in.Name, in.Description, in.Image, true, 0); err != nil {
		return Category{}, err
	} else if errs.Any() {
		return Category{}, errs
	}

	filename, err := s.images.Store(in.Image.Content, in.Image.Filename)
	if err != nil {
		return Category{}, err
	}

	created, err := s.repo.Create(ctx, Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       filename,
	})
	if err != nil {
		if cleanupErr := s.images.Delete(filename); cleanupErr != nil && s.logger != nil {
			s.logger.Warn("remove orphaned image", slog.String("file", filename), slog.Any("error", cleanupErr))
		}
		if db.IsUniqueViolation(err) {
			return Category{}, shared.FieldErrors{"name": "nama kategori sudah digunakan"}
		}
		return Category{}, err
	}
	return created, nil
}

// Update modifies an existing category. When a replacement image arrives the
// new file is stored first, the row is repointed in a single UPDATE, and
// only then is the old file removed, so the row never references a missing
// file.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if errs, err := s.validate(ctx, in.Name, in.Description, in.Image, false, id); err != nil {
		return err
	} else if errs.Any() {
		return errs
	}

	image := current.Image
	if in.Image != nil {
		stored, err := s.images.Store(in.Image.Content, in.Image.Filename)
		if err != nil {
			return err
		}
		image = stored
	}

	err = s.repo.Update(ctx, Category{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       image,
	})
	if err != nil {
		if in.Image != nil {
			if cleanupErr := s.images.Delete(image); cleanupErr != nil && s.logger != nil {
				s.logger.Warn("remove orphaned image", slog.String("file", image), slog.Any("error", cleanupErr))
			}
		}
		if db.IsUniqueViolation(err) {
			return shared.FieldErrors{"name": "nama kategori sudah digunakan"}
		}
		return err
	}

	if in.Image != nil && current.Image != "" {
		if err := s.images.Delete(current.Image); err != nil && s.logger != nil {
			s.logger.Warn("remove replaced image", slog.String("file", current.Image), slog.Any("error", err))
		}
	}
	return nil
}

// Delete removes the category and its image file. A file already missing
// from disk does not abort the row deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Delete(current.Image); err != nil && s.logger != nil {
		s.logger.Warn("remove category image", slog.String("file", current.Image), slog.Any("error", err))
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, name, description string, image *shared.Upload, imageRequired bool, excludeID int64) (shared.FieldErrors, error) {
	errs := shared.FieldErrors{}
	name = strings.TrimSpace(name)
	if name == "" {
		errs["name"] = "nama kategori wajib diisi"
	}
	if strings.TrimSpace(description) == "" {
		errs["description"] = "deskripsi wajib diisi"
	}
	if imageRequired || image != nil {
		if msg := shared.ValidateImage(image); msg != "" {
			errs["image"] = msg
		}
	}
	if name != "" {
		taken, err := s.repo.NameTaken(ctx, name, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs["name"] = "nama kategori sudah digunakan"
		}
	}
	return errs, nil
}
