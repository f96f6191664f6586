package products

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"strings"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// barcodeAttempts bounds the regeneration loop on barcode collisions.
const barcodeAttempts = 5

// ImageStore is the file area products keep their image in.
type ImageStore interface {
	Store(src io.Reader, originalName string) (string, error)
	Delete(name string) error
}

// Input carries the submitted fields of a product form. A nil Image on
// update means "keep the stored image".
type Input struct {
	CategoryID  int64
	Barcode     string
	Title       string
	Description string
	BuyPrice    int64
	SellPrice   int64
	Stock       int
	Image       *shared.Upload
}

// Service owns product business rules.
type Service struct {
	repo   Repository
	images ImageStore
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, images ImageStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

// List returns one page of products matching the optional search term.
func (s *Service) List(ctx context.Context, search string, page int) ([]Product, shared.Pagination, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, shared.PerPage, total), nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// FindByBarcode looks a product up by its exact barcode value.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (Product, error) {
	return s.repo.FindByBarcode(ctx, strings.TrimSpace(barcode))
}

// Create validates the input, stores the image, then inserts the row. A
// blank barcode gets a generated value, regenerated on collision. On a
// failed insert the stored file is removed again.
func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if errs, err := s.validate(ctx, in, true, 0); err != nil {
		return Product{}, err
	} else if errs.Any() {
		return Product{}, errs
	}

	filename, err := s.images.Store(in.Image.Content, in.Image.Filename)
	if err != nil {
		return Product{}, err
	}

	barcode := strings.TrimSpace(in.Barcode)
	generated := barcode == ""
	for attempt := 0; ; attempt++ {
		if generated {
			barcode = newBarcode()
		}
		created, err := s.repo.Create(ctx, Product{
			CategoryID:  in.CategoryID,
			Image:       filename,
			Barcode:     barcode,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			BuyPrice:    in.BuyPrice,
			SellPrice:   in.SellPrice,
			Stock:       in.Stock,
		})
		if err == nil {
			return created, nil
		}
		if db.IsUniqueViolation(err) && generated && attempt < barcodeAttempts-1 {
			continue
		}
		if cleanupErr := s.images.Delete(filename); cleanupErr != nil && s.logger != nil {
			s.logger.Warn("remove orphaned image", slog.String("file", filename), slog.Any("error", cleanupErr))
		}
		if db.IsUniqueViolation(err) {
			return Product{}, shared.FieldErrors{"barcode": "barcode sudah digunakan"}
		}
		return Product{}, err
	}
}

// Update modifies an existing product. The same store-new, repoint-row,
// delete-old ordering as categories keeps the row pointing at a live file.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if errs, err := s.validate(ctx, in, false, id); err != nil {
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

	err = s.repo.Update(ctx, Product{
		ID:          id,
		CategoryID:  in.CategoryID,
		Image:       image,
		Barcode:     strings.TrimSpace(in.Barcode),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		BuyPrice:    in.BuyPrice,
		SellPrice:   in.SellPrice,
		Stock:       in.Stock,
	})
	if err != nil {
		if in.Image != nil {
			if cleanupErr := s.images.Delete(image); cleanupErr != nil && s.logger != nil {
				s.logger.Warn("remove orphaned image", slog.String("file", image), slog.Any("error", cleanupErr))
			}
		}
		if db.IsUniqueViolation(err) {
			return shared.FieldErrors{"barcode": "barcode sudah digunakan"}
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

// Delete removes the product and its image file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Delete(current.Image); err != nil && s.logger != nil {
		s.logger.Warn("remove product image", slog.String("file", current.Image), slog.Any("error", err))
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, in Input, creating bool, excludeID int64) (shared.FieldErrors, error) {
	errs := shared.FieldErrors{}
	barcode := strings.TrimSpace(in.Barcode)

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "nama produk wajib diisi"
	}
	// a blank barcode on create gets a generated value
	if barcode == "" && !creating {
		errs["barcode"] = "barcode wajib diisi"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "deskripsi wajib diisi"
	}
	if in.CategoryID <= 0 {
		errs["category_id"] = "kategori wajib dipilih"
	}
	if in.BuyPrice <= 0 {
		errs["buy_price"] = "harga beli harus lebih dari nol"
	}
	if in.SellPrice <= 0 {
		errs["sell_price"] = "harga jual harus lebih dari nol"
	}
	if in.Stock < 0 {
		errs["stock"] = "stok tidak boleh negatif"
	}
	if creating || in.Image != nil {
		if msg := shared.ValidateImage(in.Image); msg != "" {
			errs["image"] = msg
		}
	}
	if barcode != "" {
		taken, err := s.repo.BarcodeTaken(ctx, barcode, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs["barcode"] = "barcode sudah digunakan"
		}
	}
	return errs, nil
}

// newBarcode produces a 12-digit value for products submitted without one.
func newBarcode() string {
	const digits = "0123456789"
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = digits[int(b)%len(digits)]
	}
	return string(buf)
}
