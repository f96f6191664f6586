package transactions

import (
	"context"
	"crypto/rand"
	"log/slog"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// invoiceAttempts bounds the retry loop on invoice collisions.
const invoiceAttempts = 5

// SaleRecorder counts completed sales for observability.
type SaleRecorder interface {
	RecordSale()
}

// ReceiptEnqueuer hands a finished sale to the background worker.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, invoice string) error
}

// CheckoutInput carries the submitted checkout fields. Amounts are whole
// rupiah.
type CheckoutInput struct {
	CustomerID *int64
	Cash       int64
	Discount   int64
}

// Service owns the POS cart and checkout rules.
type Service struct {
	repo     Repository
	sales    SaleRecorder
	receipts ReceiptEnqueuer
	logger   *slog.Logger
}

// NewService builds a Service instance. Recorder and enqueuer may be nil.
func NewService(repo Repository, sales SaleRecorder, receipts ReceiptEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, sales: sales, receipts: receipts, logger: logger}
}

// Cart returns the cashier's open cart lines plus their running total.
func (s *Service) Cart(ctx context.Context, cashierID int64) ([]CartItem, int64, error) {
	items, err := s.repo.CartItems(ctx, cashierID)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return items, total, nil
}

// AddToCart puts qty units of a product into the cashier's cart, merging
// with an existing line for the same product.
func (s *Service) AddToCart(ctx context.Context, cashierID, productID int64, qty int) error {
	if qty <= 0 {
		return shared.FieldErrors{"qty": "jumlah harus lebih dari nol"}
	}
	if err := s.repo.UpsertCartItem(ctx, cashierID, productID, qty); err != nil {
		if err == ErrOutOfStock {
			return shared.FieldErrors{"qty": "stok produk tidak mencukupi"}
		}
		return err
	}
	return nil
}

// RemoveFromCart drops one line from the cashier's cart.
func (s *Service) RemoveFromCart(ctx context.Context, cashierID, cartID int64) error {
	return s.repo.DeleteCartItem(ctx, cashierID, cartID)
}

// Checkout turns the cashier's cart into a completed sale. The whole write
// is atomic; an invoice collision is retried with a fresh number.
func (s *Service) Checkout(ctx context.Context, cashierID int64, in CheckoutInput) (Transaction, error) {
	items, subtotal, err := s.Cart(ctx, cashierID)
	if err != nil {
		return Transaction{}, err
	}
	if len(items) == 0 {
		return Transaction{}, shared.FieldErrors{"cart": "keranjang masih kosong"}
	}
	if in.Discount < 0 || in.Discount > subtotal {
		return Transaction{}, shared.FieldErrors{"discount": "diskon tidak valid"}
	}
	grandTotal := subtotal - in.Discount
	if in.Cash < grandTotal {
		return Transaction{}, shared.FieldErrors{"cash": "uang tunai kurang dari total belanja"}
	}

	t := Transaction{
		CashierID:  cashierID,
		CustomerID: in.CustomerID,
		Cash:       in.Cash,
		Change:     in.Cash - grandTotal,
		Discount:   in.Discount,
		GrandTotal: grandTotal,
	}

	var created Transaction
	for attempt := 0; ; attempt++ {
		t.Invoice = newInvoice()
		created, err = s.repo.Checkout(ctx, t, items)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err) && attempt < invoiceAttempts-1 {
			continue
		}
		if err == ErrOutOfStock {
			return Transaction{}, shared.FieldErrors{"cart": "stok produk tidak mencukupi"}
		}
		return Transaction{}, err
	}

	if s.sales != nil {
		s.sales.RecordSale()
	}
	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, created.Invoice); err != nil && s.logger != nil {
			s.logger.Warn("enqueue receipt", slog.String("invoice", created.Invoice), slog.Any("error", err))
		}
	}
	return created, nil
}

// Receipt fetches a completed sale with its lines for printing.
func (s *Service) Receipt(ctx context.Context, invoice string) (Receipt, error) {
	return s.repo.FindByInvoice(ctx, invoice)
}

const invoiceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newInvoice produces a TRX-XXXXXXXXXX number. Collisions are handled by
// the caller's retry loop against the unique index.
func newInvoice() string {
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = invoiceCharset[int(b)%len(invoiceCharset)]
	}
	return "TRX-" + string(buf)
}
