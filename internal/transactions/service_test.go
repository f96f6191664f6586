package transactions

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

type stockEntry struct {
	sellPrice int64
	buyPrice  int64
	stock     int
}

type memoryRepo struct {
	nextCartID int64
	nextTxID   int64
	stock      map[int64]*stockEntry
	carts      map[int64][]CartItem
	sales      map[string]Receipt
	profits    map[string][]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextCartID: 1,
		nextTxID:   1,
		stock:      map[int64]*stockEntry{},
		carts:      map[int64][]CartItem{},
		sales:      map[string]Receipt{},
		profits:    map[string][]int64{},
	}
}

func (m *memoryRepo) addProduct(id int64, sellPrice, buyPrice int64, stock int) {
	m.stock[id] = &stockEntry{sellPrice: sellPrice, buyPrice: buyPrice, stock: stock}
}

func (m *memoryRepo) CartItems(_ context.Context, cashierID int64) ([]CartItem, error) {
	return append([]CartItem(nil), m.carts[cashierID]...), nil
}

func (m *memoryRepo) UpsertCartItem(_ context.Context, cashierID, productID int64, qty int) error {
	entry, ok := m.stock[productID]
	if !ok {
		return shared.ErrNotFound
	}
	items := m.carts[cashierID]
	for i, it := range items {
		if it.ProductID == productID {
			total := it.Qty + qty
			if total > entry.stock {
				return ErrOutOfStock
			}
			items[i].Qty = total
			items[i].Price = entry.sellPrice * int64(total)
			return nil
		}
	}
	if qty > entry.stock {
		return ErrOutOfStock
	}
	m.carts[cashierID] = append(items, CartItem{
		ID:        m.nextCartID,
		CashierID: cashierID,
		ProductID: productID,
		SellPrice: entry.sellPrice,
		BuyPrice:  entry.buyPrice,
		Qty:       qty,
		Price:     entry.sellPrice * int64(qty),
	})
	m.nextCartID++
	return nil
}

func (m *memoryRepo) DeleteCartItem(_ context.Context, cashierID, cartID int64) error {
	items := m.carts[cashierID]
	for i, it := range items {
		if it.ID == cartID {
			m.carts[cashierID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) Checkout(_ context.Context, t Transaction, items []CartItem) (Transaction, error) {
	if _, exists := m.sales[t.Invoice]; exists {
		return Transaction{}, &fakeUniqueViolation{}
	}
	for _, it := range items {
		entry := m.stock[it.ProductID]
		if entry.stock < it.Qty {
			return Transaction{}, ErrOutOfStock
		}
	}
	t.ID = m.nextTxID
	m.nextTxID++
	rec := Receipt{Transaction: t}
	for _, it := range items {
		m.stock[it.ProductID].stock -= it.Qty
		rec.Details = append(rec.Details, Detail{
			TransactionID: t.ID,
			ProductID:     it.ProductID,
			Qty:           it.Qty,
			Price:         it.Price,
		})
		m.profits[t.Invoice] = append(m.profits[t.Invoice], (it.SellPrice-it.BuyPrice)*int64(it.Qty))
	}
	m.sales[t.Invoice] = rec
	delete(m.carts, t.CashierID)
	return t, nil
}

func (m *memoryRepo) FindByInvoice(_ context.Context, invoice string) (Receipt, error) {
	rec, ok := m.sales[invoice]
	if !ok {
		return Receipt{}, shared.ErrNotFound
	}
	return rec, nil
}

// fakeUniqueViolation only needs to not be a unique violation per pgconn,
// it exercises the non-retry error path.
type fakeUniqueViolation struct{}

func (*fakeUniqueViolation) Error() string { return "duplicate invoice" }

type countingRecorder struct{ n int }

func (c *countingRecorder) RecordSale() { c.n++ }

type capturingEnqueuer struct{ invoices []string }

func (c *capturingEnqueuer) EnqueueReceipt(_ context.Context, invoice string) error {
	c.invoices = append(c.invoices, invoice)
	return nil
}

const cashier = int64(7)

func TestAddToCartMergesQty(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 10)
	svc := NewService(repo, nil, nil, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 2))
	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 3))

	items, total, err := svc.Cart(context.Background(), cashier)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Qty)
	assert.Equal(t, int64(10000), total)
}

func TestAddToCartRejectsOverStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 3)
	svc := NewService(repo, nil, nil, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 2))
	err := svc.AddToCart(context.Background(), cashier, 1, 2)

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "qty")

	items, _, _ := svc.Cart(context.Background(), cashier)
	assert.Equal(t, 2, items[0].Qty)
}

func TestAddToCartRejectsMissingProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil)
	assert.ErrorIs(t, svc.AddToCart(context.Background(), cashier, 42, 1), shared.ErrNotFound)
}

func TestCheckoutWritesSaleAndClearsCart(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 10)
	repo.addProduct(2, 5000, 4000, 4)
	recorder := &countingRecorder{}
	enqueuer := &capturingEnqueuer{}
	svc := NewService(repo, recorder, enqueuer, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 3)) // 6000
	require.NoError(t, svc.AddToCart(context.Background(), cashier, 2, 2)) // 10000

	created, err := svc.Checkout(context.Background(), cashier, CheckoutInput{Cash: 20000, Discount: 1000})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.Invoice, "TRX-"))
	assert.Len(t, created.Invoice, len("TRX-")+10)
	assert.Equal(t, int64(15000), created.GrandTotal)
	assert.Equal(t, int64(5000), created.Change)

	assert.Equal(t, 7, repo.stock[1].stock)
	assert.Equal(t, 2, repo.stock[2].stock)
	assert.ElementsMatch(t, []int64{1500, 2000}, repo.profits[created.Invoice])

	items, _, err := svc.Cart(context.Background(), cashier)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Equal(t, 1, recorder.n)
	assert.Equal(t, []string{created.Invoice}, enqueuer.invoices)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil)

	_, err := svc.Checkout(context.Background(), cashier, CheckoutInput{Cash: 1000})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "cart")
}

func TestCheckoutRejectsInsufficientCash(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 10)
	svc := NewService(repo, nil, nil, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 3))
	_, err := svc.Checkout(context.Background(), cashier, CheckoutInput{Cash: 5000})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "cash")

	// nothing written, cart untouched
	assert.Empty(t, repo.sales)
	items, _, _ := svc.Cart(context.Background(), cashier)
	assert.Len(t, items, 1)
}

func TestCheckoutRejectsInvalidDiscount(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 10)
	svc := NewService(repo, nil, nil, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 1))
	_, err := svc.Checkout(context.Background(), cashier, CheckoutInput{Cash: 50000, Discount: 99999})

	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "discount")
}

func TestReceiptLookup(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 2000, 1500, 10)
	svc := NewService(repo, nil, nil, nil)

	require.NoError(t, svc.AddToCart(context.Background(), cashier, 1, 2))
	created, err := svc.Checkout(context.Background(), cashier, CheckoutInput{Cash: 4000})
	require.NoError(t, err)

	rec, err := svc.Receipt(context.Background(), created.Invoice)
	require.NoError(t, err)
	assert.Equal(t, created.Invoice, rec.Transaction.Invoice)
	require.Len(t, rec.Details, 1)
	assert.Equal(t, 2, rec.Details[0].Qty)

	_, err = svc.Receipt(context.Background(), "TRX-TIDAKADA00")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNewInvoiceShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		inv := newInvoice()
		require.True(t, strings.HasPrefix(inv, "TRX-"))
		require.Len(t, inv, len("TRX-")+10)
		for _, ch := range inv[len("TRX-"):] {
			assert.Contains(t, invoiceCharset, string(ch))
		}
		seen[inv] = true
	}
	// 50 draws from a 36^10 space never collide in practice
	assert.Len(t, seen, 50)
}
