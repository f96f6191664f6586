package products

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/categories"
	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

const maxUploadMemory = 4 << 20

// Handler serves the product resource routes.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories *categories.Service
	renderer   *view.Engine
	gate       rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, categorySvc *categories.Service, renderer *view.Engine, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, categories: categorySvc, renderer: renderer, gate: gate}
}

// MountRoutes registers the product resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(
			shared.PermProductsIndex,
			shared.PermProductsCreate,
			shared.PermProductsEdit,
			shared.PermProductsDelete,
		))
		r.Get("/", h.index)
		r.Get("/create", h.createForm)
		r.Post("/", h.store)
		r.Get("/{id}/edit", h.editForm)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.destroy)
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	search := r.URL.Query().Get("q")

	items, pagination, err := h.service.List(r.Context(), search, page)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Products/Index", map[string]any{
		"products":   items,
		"pagination": pagination,
		"q":          search,
	})
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	all, err := h.categories.All(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Products/Create", map[string]any{
		"categories": all,
		"errors":     shared.FieldErrors{},
	})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	in, err := parseForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if _, err := h.service.Create(r.Context(), in); err != nil {
		var fieldErrs shared.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Products/Create", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.logger.Error("create product", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.redirectWithFlash(w, r, "Produk berhasil disimpan")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, id)
		return
	}
	all, err := h.categories.All(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Products/Edit", map[string]any{
		"product":    product,
		"categories": all,
		"errors":     shared.FieldErrors{},
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r)
	if !ok {
		return
	}
	in, err := parseForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.Update(r.Context(), id, in); err != nil {
		var fieldErrs shared.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Products/Edit", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.respondLookupError(w, err, id)
		return
	}

	h.redirectWithFlash(w, r, "Produk berhasil diperbarui")
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondLookupError(w, err, id)
		return
	}
	h.redirectWithFlash(w, r, "Produk berhasil dihapus")
}

func parseForm(r *http.Request) (Input, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return Input{}, err
	}
	categoryID, _ := strconv.ParseInt(r.PostFormValue("category_id"), 10, 64)
	buyPrice, _ := strconv.ParseInt(r.PostFormValue("buy_price"), 10, 64)
	sellPrice, _ := strconv.ParseInt(r.PostFormValue("sell_price"), 10, 64)
	stock, _ := strconv.Atoi(r.PostFormValue("stock"))

	in := Input{
		CategoryID:  categoryID,
		Barcode:     r.PostFormValue("barcode"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		BuyPrice:    buyPrice,
		SellPrice:   sellPrice,
		Stock:       stock,
	}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		in.Image = uploadFromPart(file, header)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No image in this submission.
	default:
		return Input{}, err
	}
	return in, nil
}

func uploadFromPart(file multipart.File, header *multipart.FileHeader) *shared.Upload {
	return &shared.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}
}

// oldInput repopulates the form after a rejected submit.
func oldInput(in Input) map[string]any {
	return map[string]any{
		"category_id": in.CategoryID,
		"barcode":     in.Barcode,
		"title":       in.Title,
		"description": in.Description,
		"buy_price":   in.BuyPrice,
		"sell_price":  in.SellPrice,
		"stock":       in.Stock,
	}
}

func (h *Handler) param(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, shared.ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	h.logger.Error("product request failed", slog.Any("error", err), slog.Int64("id", id))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) {
	if err := h.renderer.Render(w, r, status, component, props); err != nil {
		h.logger.Error("render products page", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	view.Redirect(w, r, "/apps/products")
}
