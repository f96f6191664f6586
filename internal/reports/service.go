package reports

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warungpos/warungpos/internal/shared"
)

const dateLayout = "2006-01-02"

// PDFRenderer turns report HTML into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service reads and exports the sales and profit reports.
type Service struct {
	repo Repository
	pdf  PDFRenderer
}

// NewService builds a Service instance. The PDF renderer may be nil; PDF
// export then reports an error instead of rendering.
func NewService(repo Repository, pdf PDFRenderer) *Service {
	return &Service{repo: repo, pdf: pdf}
}

// ParseRange validates a start/end date pair. The end date is widened to
// the end of its day so the range is inclusive on both ends.
func ParseRange(startRaw, endRaw string) (Range, error) {
	errs := shared.FieldErrors{}
	start, err := time.Parse(dateLayout, strings.TrimSpace(startRaw))
	if err != nil {
		errs["start_date"] = "tanggal mulai tidak valid"
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(endRaw))
	if err != nil {
		errs["end_date"] = "tanggal akhir tidak valid"
	}
	if errs.Any() {
		return Range{}, errs
	}
	if end.Before(start) {
		return Range{}, shared.FieldErrors{"end_date": "tanggal akhir sebelum tanggal mulai"}
	}
	return Range{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

// Sales returns one page of transactions in the range plus the range's
// grand-total sum.
func (s *Service) Sales(ctx context.Context, rng Range, page int) ([]SaleRow, shared.Pagination, int64, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	rows, count, err := s.repo.SalesBetween(ctx, rng, p)
	if err != nil {
		return nil, shared.Pagination{}, 0, err
	}
	sum, err := s.repo.SalesTotal(ctx, rng)
	if err != nil {
		return nil, shared.Pagination{}, 0, err
	}
	return rows, shared.NewPagination(page, shared.PerPage, count), sum, nil
}

// Profits returns one page of profit rows in the range plus the range's sum.
func (s *Service) Profits(ctx context.Context, rng Range, page int) ([]ProfitRow, shared.Pagination, int64, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	rows, count, err := s.repo.ProfitsBetween(ctx, rng, p)
	if err != nil {
		return nil, shared.Pagination{}, 0, err
	}
	sum, err := s.repo.ProfitsTotal(ctx, rng)
	if err != nil {
		return nil, shared.Pagination{}, 0, err
	}
	return rows, shared.NewPagination(page, shared.PerPage, count), sum, nil
}

// WriteSalesCSV streams the full range as CSV.
func (s *Service) WriteSalesCSV(ctx context.Context, w io.Writer, rng Range) error {
	rows, err := s.repo.AllSalesBetween(ctx, rng)
	if err != nil {
		return err
	}
	sum, err := s.repo.SalesTotal(ctx, rng)
	if err != nil {
		return err
	}

	cw := newCSVWriter(w)
	start, end := rangeLabel(rng)
	if err := cw.comment(fmt.Sprintf("# Laporan Penjualan %s s/d %s", start, end)); err != nil {
		return err
	}
	if err := cw.row([]string{"Tanggal", "Invoice", "Kasir", "Pelanggan", "Total"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.row([]string{
			r.CreatedAt.Format(dateLayout),
			r.Invoice,
			r.Cashier,
			r.Customer,
			Rupiah(r.GrandTotal),
		}); err != nil {
			return err
		}
	}
	if err := cw.row([]string{"", "", "", "Total", Rupiah(sum)}); err != nil {
		return err
	}
	return cw.flush()
}

// WriteProfitsCSV streams the full range as CSV.
func (s *Service) WriteProfitsCSV(ctx context.Context, w io.Writer, rng Range) error {
	rows, err := s.repo.AllProfitsBetween(ctx, rng)
	if err != nil {
		return err
	}
	sum, err := s.repo.ProfitsTotal(ctx, rng)
	if err != nil {
		return err
	}

	cw := newCSVWriter(w)
	start, end := rangeLabel(rng)
	if err := cw.comment(fmt.Sprintf("# Laporan Keuntungan %s s/d %s", start, end)); err != nil {
		return err
	}
	if err := cw.row([]string{"Tanggal", "Invoice", "Keuntungan"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.row([]string{r.CreatedAt.Format(dateLayout), r.Invoice, Rupiah(r.Total)}); err != nil {
			return err
		}
	}
	if err := cw.row([]string{"", "Total", Rupiah(sum)}); err != nil {
		return err
	}
	return cw.flush()
}

// SalesPDF renders the full range as a PDF document.
func (s *Service) SalesPDF(ctx context.Context, rng Range) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("pdf renderer not configured")
	}
	rows, err := s.repo.AllSalesBetween(ctx, rng)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.SalesTotal(ctx, rng)
	if err != nil {
		return nil, err
	}
	html, err := renderSalesHTML(rng, rows, sum)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderHTML(ctx, html)
}

// ProfitsPDF renders the full range as a PDF document.
func (s *Service) ProfitsPDF(ctx context.Context, rng Range) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("pdf renderer not configured")
	}
	rows, err := s.repo.AllProfitsBetween(ctx, rng)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.ProfitsTotal(ctx, rng)
	if err != nil {
		return nil, err
	}
	html, err := renderProfitsHTML(rng, rows, sum)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderHTML(ctx, html)
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount with Indonesian digit grouping, e.g. Rp 15.000.
func Rupiah(amount int64) string {
	return rupiahPrinter.Sprintf("Rp %d", amount)
}

func rangeLabel(rng Range) (string, string) {
	return rng.Start.Format(dateLayout), rng.End.AddDate(0, 0, -1).Format(dateLayout)
}

type csvWriter struct {
	buf *bufio.Writer
	csv *csv.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	buf := bufio.NewWriter(w)
	cw := csv.NewWriter(buf)
	cw.UseCRLF = true
	return &csvWriter{buf: buf, csv: cw}
}

func (c *csvWriter) comment(line string) error {
	_, err := c.buf.WriteString(line + "\r\n")
	return err
}

func (c *csvWriter) row(fields []string) error {
	return c.csv.Write(fields)
}

func (c *csvWriter) flush() error {
	c.csv.Flush()
	if err := c.csv.Error(); err != nil {
		return err
	}
	return c.buf.Flush()
}

var salesPDFTemplate = template.Must(template.New("sales").Parse(`<!DOCTYPE html>
<html lang="id">
<head><meta charset="utf-8"><title>Laporan Penjualan</title></head>
<body>
<h1>Laporan Penjualan</h1>
<p>Periode {{.Start}} s/d {{.End}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Tanggal</th><th>Invoice</th><th>Kasir</th><th>Pelanggan</th><th>Total</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Invoice}}</td><td>{{.Cashier}}</td><td>{{.Customer}}</td><td>{{.Total}}</td></tr>
{{end}}<tr><td colspan="4">Total</td><td>{{.Sum}}</td></tr>
</table>
</body>
</html>`))

func renderSalesHTML(rng Range, rows []SaleRow, sum int64) (string, error) {
	type row struct {
		Date, Invoice, Cashier, Customer, Total string
	}
	start, end := rangeLabel(rng)
	data := struct {
		Start, End, Sum string
		Rows            []row
	}{Start: start, End: end, Sum: Rupiah(sum)}
	for _, r := range rows {
		data.Rows = append(data.Rows, row{
			Date:     r.CreatedAt.Format(dateLayout),
			Invoice:  r.Invoice,
			Cashier:  r.Cashier,
			Customer: r.Customer,
			Total:    Rupiah(r.GrandTotal),
		})
	}
	var b strings.Builder
	if err := salesPDFTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

var profitsPDFTemplate = template.Must(template.New("profits").Parse(`<!DOCTYPE html>
<html lang="id">
<head><meta charset="utf-8"><title>Laporan Keuntungan</title></head>
<body>
<h1>Laporan Keuntungan</h1>
<p>Periode {{.Start}} s/d {{.End}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Tanggal</th><th>Invoice</th><th>Keuntungan</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Invoice}}</td><td>{{.Total}}</td></tr>
{{end}}<tr><td colspan="2">Total</td><td>{{.Sum}}</td></tr>
</table>
</body>
</html>`))

func renderProfitsHTML(rng Range, rows []ProfitRow, sum int64) (string, error) {
	type row struct {
		Date, Invoice, Total string
	}
	start, end := rangeLabel(rng)
	data := struct {
		Start, End, Sum string
		Rows            []row
	}{Start: start, End: end, Sum: Rupiah(sum)}
	for _, r := range rows {
		data.Rows = append(data.Rows, row{
			Date:    r.CreatedAt.Format(dateLayout),
			Invoice: r.Invoice,
			Total:   Rupiah(r.Total),
		})
	}
	var b strings.Builder
	if err := profitsPDFTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
