package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// Handler serves the customer resource routes.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer *view.Engine
	gate     rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer *view.Engine, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer, gate: gate}
}

// MountRoutes registers the customer resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(
			shared.PermCustomersIndex,
			shared.PermCustomersCreate,
			shared.PermCustomersEdit,
			shared.PermCustomersDelete,
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
		h.logger.Error("list customers", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Customers/Index", map[string]any{
		"customers":  items,
		"pagination": pagination,
		"q":          search,
	})
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Apps/Customers/Create", map[string]any{
		"errors": shared.FieldErrors{},
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
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Customers/Create", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.logger.Error("create customer", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.redirectWithFlash(w, r, "Pelanggan berhasil disimpan")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, id)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Customers/Edit", map[string]any{
		"customer": customer,
		"errors":   shared.FieldErrors{},
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
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Customers/Edit", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.respondLookupError(w, err, id)
		return
	}

	h.redirectWithFlash(w, r, "Pelanggan berhasil diperbarui")
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
	h.redirectWithFlash(w, r, "Pelanggan berhasil dihapus")
}

func parseForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}
	return Input{
		Name:    r.PostFormValue("name"),
		Phone:   r.PostFormValue("phone"),
		Address: r.PostFormValue("address"),
	}, nil
}

func oldInput(in Input) map[string]any {
	return map[string]any{
		"name":    in.Name,
		"phone":   in.Phone,
		"address": in.Address,
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
	h.logger.Error("customer request failed", slog.Any("error", err), slog.Int64("id", id))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) {
	if err := h.renderer.Render(w, r, status, component, props); err != nil {
		h.logger.Error("render customers page", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	view.Redirect(w, r, "/apps/customers")
}
