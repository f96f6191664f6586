package customers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/warungpos/warungpos/internal/shared"
)

// Input carries the submitted fields of a customer form.
type Input struct {
	Name    string
	Phone   string
	Address string
}

// Service owns customer business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns one page of customers matching the optional search term.
func (s *Service) List(ctx context.Context, search string, page int) ([]Customer, shared.Pagination, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, shared.PerPage, total), nil
}

// All returns every customer for the POS customer picker.
func (s *Service) All(ctx context.Context) ([]Customer, error) {
	return s.repo.All(ctx)
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the input and inserts the row.
func (s *Service) Create(ctx context.Context, in Input) (Customer, error) {
	if errs := validate(in); errs.Any() {
		return Customer{}, errs
	}
	return s.repo.Create(ctx, Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	})
}

// Update modifies an existing customer.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if errs := validate(in); errs.Any() {
		return errs
	}
	return s.repo.Update(ctx, Customer{
		ID:      id,
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	})
}

// Delete removes the customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(in Input) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "nama pelanggan wajib diisi"
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs["phone"] = "nomor telepon wajib diisi"
	}
	if strings.TrimSpace(in.Address) == "" {
		errs["address"] = "alamat wajib diisi"
	}
	return errs
}
