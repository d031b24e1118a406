package render

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Document es la entrada de render de una invoice: cabecera + líneas en orden.
// Es lo único que sale del storage hacia el renderer.
type Document struct {
	InvoiceID  int64      `json:"invoice_id"`
	TenantID   int64      `json:"tenant_id"`
	Number     string     `json:"number"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Currency   string     `json:"currency"`
	TotalCents int64      `json:"total_cents"`
	IssuedDate *time.Time `json:"issued_date,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ClientName string     `json:"client_name,omitempty"`
	Lines      []Line     `json:"lines"`
}

type Line struct {
	Description    string `json:"description"`
	Qty            int64  `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

type Rendered struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Renderer es una función pura de Document a bytes (salvo el remoto, que hace I/O).
type Renderer interface {
	Render(ctx context.Context, doc Document) (Rendered, error)
}

// Money formatea centavos como "1234.50". Negativos con signo.
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FileStem es el nombre base del archivo: el número, o el id si no hay número.
func FileStem(doc Document) string {
	if doc.Number != "" {
		return doc.Number
	}
	return strconv.FormatInt(doc.InvoiceID, 10)
}
