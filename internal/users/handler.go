package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/roles"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// Handler serves the user management resource routes.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	roles    *roles.Service
	renderer *view.Engine
	gate     rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roleSvc *roles.Service, renderer *view.Engine, gate rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, roles: roleSvc, renderer: renderer, gate: gate}
}

// MountRoutes registers the user resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(
			shared.PermUsersIndex,
			shared.PermUsersCreate,
			shared.PermUsersEdit,
			shared.PermUsersDelete,
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
		h.logger.Error("list users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Users/Index", map[string]any{
		"users":      items,
		"pagination": pagination,
		"q":          search,
	})
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	all, err := h.roles.All(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Users/Create", map[string]any{
		"roles":  all,
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
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Users/Create", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.logger.Error("create user", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.redirectWithFlash(w, r, "User berhasil disimpan")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, id)
		return
	}
	all, err := h.roles.All(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "Apps/Users/Edit", map[string]any{
		"user":   user,
		"roles":  all,
		"errors": shared.FieldErrors{},
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
			h.render(w, r, http.StatusUnprocessableEntity, "Apps/Users/Edit", map[string]any{
				"errors": fieldErrs,
				"old":    oldInput(in),
			})
			return
		}
		h.respondLookupError(w, err, id)
		return
	}

	h.redirectWithFlash(w, r, "User berhasil diperbarui")
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
	h.redirectWithFlash(w, r, "User berhasil dihapus")
}

func parseForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}
	in := Input{
		Name:                 r.PostFormValue("name"),
		Email:                r.PostFormValue("email"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}
	for _, raw := range r.PostForm["role_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		in.RoleIDs = append(in.RoleIDs, id)
	}
	return in, nil
}

// oldInput repopulates the form after a rejected submit. Passwords are never
// echoed back.
func oldInput(in Input) map[string]any {
	return map[string]any{
		"name":     in.Name,
		"email":    in.Email,
		"role_ids": in.RoleIDs,
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
	h.logger.Error("user request failed", slog.Any("error", err), slog.Int64("id", id))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) {
	if err := h.renderer.Render(w, r, status, component, props); err != nil {
		h.logger.Error("render users page", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	view.Redirect(w, r, "/apps/users")
}
