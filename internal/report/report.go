// Package report renders the records a screen has already loaded into a paginated
// PDF table. It never talks to the API, so an export reflects the last Load.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Column is one (title, extractor) pair. Extractors substitute their own fallback
// text for absent fields.
type Column[T any] struct {
	Title string
	Value func(T) string
}

// Table is the document content: a title heading, a header row and one row per
// record in load order.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Build extracts every column from every record.
func Build[T any](title string, records []T, columns []Column[T]) Table {
	t := Table{
		Title:  title,
		Header: make([]string, len(columns)),
		Rows:   make([][]string, 0, len(records)),
	}
	for i, col := range columns {
		t.Header[i] = col.Title
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Value(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Filename names the download after the export date, e.g. item-report_2024-03-01.pdf.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-report_%s.pdf", prefix, now.UTC().Format("2006-01-02"))
}

// Fallback returns fallback when value is blank.
func Fallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

const (
	titleY    = 15.0
	tableTopY = 20.0
	rowHeight = 8.0
	fontName  = "Helvetica"
)

// WritePDF renders t as an A4 document. The header row repeats on every page.
// Text uses the Helvetica core font and is encoded as cp1252: Western European
// accents survive, other scripts render as ".".
func (t Table) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, tableTopY, 14)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(t.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	bottomLimit := pageH - 15
	colW := (pageW - left - right) / float64(max(len(t.Header), 1))

	fit := func(s string) string {
		s = tr(s)
		if pdf.GetStringWidth(s) <= colW-2 {
			return s
		}
		for len(s) > 0 && pdf.GetStringWidth(s+"...") > colW-2 {
			s = s[:len(s)-1]
		}
		return s + "..."
	}

	header := func() {
		pdf.SetFont(fontName, "B", 10)
		pdf.SetFillColor(41, 128, 185)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range t.Header {
			pdf.CellFormat(colW, rowHeight, fit(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetFont(fontName, "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFillColor(245, 245, 245)
	}

	pdf.AddPage()
	pdf.SetFont(fontName, "", 16)
	pdf.Text(left, titleY, tr(t.Title))
	pdf.SetY(tableTopY)
	header()

	for i, row := range t.Rows {
		if pdf.GetY()+rowHeight > bottomLimit {
			pdf.AddPage()
			pdf.SetY(tableTopY)
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colW, rowHeight, fit(cell), "1", 0, "L", i%2 == 1, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render %q: %w", t.Title, err)
	}
	return pdf.Output(w)
}
