// Package pdfdoc renderiza una invoice como PDF A4. Es el renderer por defecto
// cuando no hay RENDERER_URL.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"invoicing-backend/internal/ports/render"

	"github.com/phpdave11/gofpdf"
)

const (
	ContentType = "application/pdf"

	font       = "Helvetica"
	lineHeight = 7.0
	maxDesc    = 60
)

// anchos de columna en mm; suman el ancho útil de A4 con márgenes de 15
var cols = [4]float64{100, 20, 30, 30}

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (Renderer) Render(_ context.Context, doc render.Document) (render.Rendered, error) {
	if doc.Currency == "" {
		doc.Currency = "EUR"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Invoice "+render.FileStem(doc), true)
	// las fuentes core son cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, tr("Invoice "+doc.Number), "", 1, "L", false, 0, "")

	pdf.SetFont(font, "", 10)
	sub := doc.Title
	if doc.ClientName != "" {
		sub += " - " + doc.ClientName
	}
	pdf.CellFormat(0, 6, tr(sub), "", 1, "L", false, 0, "")
	if doc.IssuedDate != nil {
		pdf.CellFormat(0, 6, "Issued "+doc.IssuedDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	if doc.DueDate != nil {
		pdf.CellFormat(0, 6, "Due "+doc.DueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(font, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Description", "Qty", "Unit", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], lineHeight, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 10)
	if len(doc.Lines) == 0 {
		pdf.CellFormat(cols[0]+cols[1]+cols[2]+cols[3], lineHeight, "No lines", "1", 1, "C", false, 0, "")
	}
	for _, l := range doc.Lines {
		pdf.CellFormat(cols[0], lineHeight, tr(clip(l.Description)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], lineHeight, strconv.FormatInt(l.Qty, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], lineHeight, render.Money(l.UnitPriceCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], lineHeight, render.Money(l.TotalCents), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(cols[0]+cols[1]+cols[2], lineHeight, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], lineHeight, render.Money(doc.TotalCents)+" "+doc.Currency, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return render.Rendered{}, fmt.Errorf("pdfdoc: %w", err)
	}
	return render.Rendered{
		ContentType: ContentType,
		Filename:    "invoice_" + render.FileStem(doc) + ".pdf",
		Body:        buf.Bytes(),
	}, nil
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxDesc {
		return s
	}
	r := []rune(s)
	return string(r[:maxDesc-3]) + "..."
}
