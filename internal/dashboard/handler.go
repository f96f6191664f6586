package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/view"
)

// Handler serves the dashboard page. Authentication is enforced by the
// surrounding route group; no permission string applies here.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer *view.Engine
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer *view.Engine) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("build dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.renderer.Render(w, r, http.StatusOK, "Apps/Dashboard/Index", map[string]any{
		"today_sales":  ov.TodaySales,
		"week":         ov.Week,
		"week_chart":   ov.WeekChart,
		"best_sellers": ov.BestSellers,
		"low_stock":    ov.LowStock,
	}); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
	}
}
