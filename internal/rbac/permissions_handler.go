package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// PermissionsHandler serves the read-only permissions page.
type PermissionsHandler struct {
	logger   *slog.Logger
	service  *Service
	renderer *view.Engine
	gate     Middleware
}

// NewPermissionsHandler builds a PermissionsHandler.
func NewPermissionsHandler(logger *slog.Logger, service *Service, renderer *view.Engine, gate Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, renderer: renderer, gate: gate}
}

// MountRoutes registers the permissions routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermPermissionsIndex))
		r.Get("/", h.list)
	})
}

func (h *PermissionsHandler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.renderer.Render(w, r, http.StatusOK, "Apps/Permissions/Index", map[string]any{
		"permissions": perms,
	}); err != nil {
		h.logger.Error("render permissions", slog.Any("error", err))
	}
}
