package roles

import (
	"context"
	"strings"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// Input carries the fields of a create or update submission.
type Input struct {
	Name          string
	PermissionIDs []int64
}

// Service owns role business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of roles matching the optional search term.
func (s *Service) List(ctx context.Context, search string, page int) ([]Role, shared.Pagination, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, shared.PerPage, total), nil
}

// All returns every role, for assignment pickers.
func (s *Service) All(ctx context.Context) ([]Role, error) {
	return s.repo.All(ctx)
}

// Get fetches one role with its permissions.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a role with its permission set.
func (s *Service) Create(ctx context.Context, in Input) (Role, error) {
	if errs, err := s.validate(ctx, in, 0); err != nil {
		return Role{}, err
	} else if errs.Any() {
		return Role{}, errs
	}
	role, err := s.repo.Create(ctx, strings.TrimSpace(in.Name), in.PermissionIDs)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Role{}, shared.FieldErrors{"name": "nama role sudah digunakan"}
		}
		return Role{}, err
	}
	return role, nil
}

// Update validates and applies a rename plus permission sync.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if errs, err := s.validate(ctx, in, id); err != nil {
		return err
	} else if errs.Any() {
		return errs
	}
	err := s.repo.Update(ctx, id, strings.TrimSpace(in.Name), in.PermissionIDs)
	if err != nil && db.IsUniqueViolation(err) {
		return shared.FieldErrors{"name": "nama role sudah digunakan"}
	}
	return err
}

// Delete removes a role.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, in Input, excludeID int64) (shared.FieldErrors, error) {
	errs := shared.FieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs["name"] = "nama role wajib diisi"
	}
	if len(in.PermissionIDs) == 0 {
		errs["permissions"] = "pilih minimal satu permission"
	}
	if name != "" {
		taken, err := s.repo.NameTaken(ctx, name, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs["name"] = "nama role sudah digunakan"
		}
	}
	return errs, nil
}
