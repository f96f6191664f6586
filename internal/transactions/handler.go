package transactions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/customers"
	"github.com/warungpos/warungpos/internal/platform/httpx"
	"github.com/warungpos/warungpos/internal/products"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// Handler serves the POS cart and checkout routes. These carry no
// permission string in the route map; the authenticated session is enough.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	products  *products.Service
	customers *customers.Service
	renderer  *view.Engine
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, productSvc *products.Service, customerSvc *customers.Service, renderer *view.Engine) *Handler {
	return &Handler{logger: logger, service: service, products: productSvc, customers: customerSvc, renderer: renderer}
}

// MountRoutes registers the POS routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/searchProduct", h.searchProduct)
	r.Post("/addToCart", h.addToCart)
	r.Post("/destroyCart", h.destroyCart)
	r.Post("/store", h.store)
	r.Get("/print", h.print)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	cashierID, ok := h.currentCashier(w, r)
	if !ok {
		return
	}

	items, total, err := h.service.Cart(r.Context(), cashierID)
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	buyers, err := h.customers.All(r.Context())
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Transactions/Index", map[string]any{
		"carts":       items,
		"carts_total": total,
		"customers":   buyers,
	})
}

// searchProduct answers the barcode scanner. The response is JSON either
// way so the page can react without a reload.
func (h *Handler) searchProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentCashier(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.products.FindByBarcode(r.Context(), r.PostFormValue("barcode"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusOK, map[string]any{"success": false, "data": nil})
			return
		}
		h.logger.Error("search product", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": product})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	cashierID, ok := h.currentCashier(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	productID, _ := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64)
	qty, _ := strconv.Atoi(r.PostFormValue("qty"))

	if err := h.service.AddToCart(r.Context(), cashierID, productID, qty); err != nil {
		var fieldErrs shared.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			h.flashError(r, fieldErrs)
		case errors.Is(err, shared.ErrNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		default:
			h.logger.Error("add to cart", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	} else {
		h.flashSuccess(r, "Produk ditambahkan ke keranjang")
	}
	view.Redirect(w, r, "/apps/transactions")
}

func (h *Handler) destroyCart(w http.ResponseWriter, r *http.Request) {
	cashierID, ok := h.currentCashier(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	cartID, _ := strconv.ParseInt(r.PostFormValue("cart_id"), 10, 64)

	if err := h.service.RemoveFromCart(r.Context(), cashierID, cartID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("remove cart item", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.flashSuccess(r, "Produk dihapus dari keranjang")
	view.Redirect(w, r, "/apps/transactions")
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	cashierID, ok := h.currentCashier(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	in := CheckoutInput{}
	in.Cash, _ = strconv.ParseInt(r.PostFormValue("cash"), 10, 64)
	in.Discount, _ = strconv.ParseInt(r.PostFormValue("discount"), 10, 64)
	if raw := r.PostFormValue("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && id > 0 {
			in.CustomerID = &id
		}
	}

	created, err := h.service.Checkout(r.Context(), cashierID, in)
	if err != nil {
		var fieldErrs shared.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.flashError(r, fieldErrs)
			view.Redirect(w, r, "/apps/transactions")
			return
		}
		h.logger.Error("checkout", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.flashSuccess(r, "Transaksi berhasil disimpan")
	view.Redirect(w, r, "/apps/transactions/print?invoice="+created.Invoice)
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentCashier(w, r); !ok {
		return
	}
	receipt, err := h.service.Receipt(r.Context(), r.URL.Query().Get("invoice"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("load receipt", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Transactions/Print", map[string]any{
		"transaction": receipt.Transaction,
		"details":     receipt.Details,
	})
}

func (h *Handler) currentCashier(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func (h *Handler) flashSuccess(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
}

func (h *Handler) flashError(r *http.Request, errs shared.FieldErrors) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	for _, msg := range errs {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: msg})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) {
	if err := h.renderer.Render(w, r, status, component, props); err != nil {
		h.logger.Error("render transactions page", slog.Any("error", err))
	}
}
