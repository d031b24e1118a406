package htmldoc

import (
	"context"
	"testing"

	"invoicing-backend/internal/ports/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	doc := render.Document{
		InvoiceID:  9,
		TenantID:   1,
		Number:     "INV-2025-0001",
		Title:      "Website",
		TotalCents: 10000,
		Lines: []render.Line{
			{Description: "Design <b>", Qty: 2, UnitPriceCents: 2500, TotalCents: 5000},
			{Description: "Build", Qty: 1, UnitPriceCents: 5000, TotalCents: 5000},
		},
	}

	out, err := New().Render(context.Background(), doc)
	require.NoError(t, err)

	body := string(out.Body)
	assert.Equal(t, "text/html; charset=utf-8", out.ContentType)
	assert.Equal(t, "invoice_INV-2025-0001.html", out.Filename)
	assert.Contains(t, body, "Invoice INV-2025-0001")
	assert.Contains(t, body, "Design &lt;b&gt;")
	assert.Contains(t, body, "100.00 EUR")
	assert.Contains(t, body, "25.00")
}

func TestRender_NoLines(t *testing.T) {
	out, err := New().Render(context.Background(), render.Document{InvoiceID: 3})
	require.NoError(t, err)
	assert.Contains(t, string(out.Body), "No lines")
	assert.Equal(t, "invoice_3.html", out.Filename)
}
