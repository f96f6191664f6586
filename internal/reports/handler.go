package reports

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// Handler serves the sales and profit report routes.
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

// MountSalesRoutes registers the sales report routes.
func (h *Handler) MountSalesRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermSalesIndex))
		r.Get("/", h.salesIndex)
		r.Get("/filter", h.salesFilter)
		r.Get("/export", h.salesExport)
		r.Get("/pdf", h.salesPDF)
	})
}

// MountProfitRoutes registers the profit report routes.
func (h *Handler) MountProfitRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermProfitsIndex))
		r.Get("/", h.profitsIndex)
		r.Get("/filter", h.profitsFilter)
		r.Get("/export", h.profitsExport)
		r.Get("/pdf", h.profitsPDF)
	})
}

func (h *Handler) salesIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Apps/Sales/Index", map[string]any{
		"sales":  []SaleRow{},
		"errors": shared.FieldErrors{},
	})
}

func (h *Handler) salesFilter(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Sales/Index")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	rows, pagination, sum, err := h.service.Sales(r.Context(), rng, page)
	if err != nil {
		h.logger.Error("filter sales", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Sales/Index", map[string]any{
		"sales":      rows,
		"pagination": pagination,
		"total":      sum,
		"start_date": r.URL.Query().Get("start_date"),
		"end_date":   r.URL.Query().Get("end_date"),
		"errors":     shared.FieldErrors{},
	})
}

func (h *Handler) salesExport(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Sales/Index")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.WriteSalesCSV(r.Context(), &buf, rng); err != nil {
		h.logger.Error("export sales csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sendDownload(w, "laporan-penjualan.csv", "text/csv", buf.Bytes())
}

func (h *Handler) salesPDF(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Sales/Index")
	if !ok {
		return
	}
	pdf, err := h.service.SalesPDF(r.Context(), rng)
	if err != nil {
		h.logger.Error("export sales pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sendDownload(w, "laporan-penjualan.pdf", "application/pdf", pdf)
}

func (h *Handler) profitsIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Apps/Profits/Index", map[string]any{
		"profits": []ProfitRow{},
		"errors":  shared.FieldErrors{},
	})
}

func (h *Handler) profitsFilter(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Profits/Index")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	rows, pagination, sum, err := h.service.Profits(r.Context(), rng, page)
	if err != nil {
		h.logger.Error("filter profits", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Apps/Profits/Index", map[string]any{
		"profits":    rows,
		"pagination": pagination,
		"total":      sum,
		"start_date": r.URL.Query().Get("start_date"),
		"end_date":   r.URL.Query().Get("end_date"),
		"errors":     shared.FieldErrors{},
	})
}

func (h *Handler) profitsExport(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Profits/Index")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.WriteProfitsCSV(r.Context(), &buf, rng); err != nil {
		h.logger.Error("export profits csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sendDownload(w, "laporan-keuntungan.csv", "text/csv", buf.Bytes())
}

func (h *Handler) profitsPDF(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r, "Apps/Profits/Index")
	if !ok {
		return
	}
	pdf, err := h.service.ProfitsPDF(r.Context(), rng)
	if err != nil {
		h.logger.Error("export profits pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sendDownload(w, "laporan-keuntungan.pdf", "application/pdf", pdf)
}

// parseRange validates the query dates; an invalid pair repaints the report
// page with field errors instead of filtering.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request, component string) (Range, bool) {
	rng, err := ParseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		var fieldErrs shared.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.render(w, r, http.StatusUnprocessableEntity, component, map[string]any{
				"errors":     fieldErrs,
				"start_date": r.URL.Query().Get("start_date"),
				"end_date":   r.URL.Query().Get("end_date"),
			})
			return Range{}, false
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return Range{}, false
	}
	return rng, true
}

func sendDownload(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) {
	if err := h.renderer.Render(w, r, status, component, props); err != nil {
		h.logger.Error("render report page", slog.Any("error", err))
	}
}
