// Package htmldoc renderiza una invoice como documento HTML imprimible.
// Se sirve con format=html; el formato por defecto es PDF.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"invoicing-backend/internal/ports/render"
)

const tmpl = `<!doctype html>
<html>
<head>
<meta charset="utf-8"/>
<title>Invoice {{.Number}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 12px; }
h1 { margin-bottom: 0; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
td, th { border: 1px solid #ccc; padding: 6px; }
td.n { text-align: right; }
tfoot td { font-weight: bold; }
.small { color: #666; font-size: 10px; }
</style>
</head>
<body>
<h1>Invoice {{.Number}}</h1>
<div class="small">{{.Title}}{{if .ClientName}} · {{.ClientName}}{{end}}</div>
{{if .IssuedDate}}<div class="small">Issued {{.IssuedDate.Format "2006-01-02"}}</div>{{end}}
{{if .DueDate}}<div class="small">Due {{.DueDate.Format "2006-01-02"}}</div>{{end}}
<table>
<thead><tr><th>Description</th><th>Qty</th><th>Unit</th><th>Total</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Description}}</td><td class="n">{{.Qty}}</td><td class="n">{{money .UnitPriceCents}}</td><td class="n">{{money .TotalCents}}</td></tr>
{{else}}<tr><td colspan="4" style="text-align:center">No lines</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="3" class="n">Total</td><td class="n">{{money .TotalCents}} {{.Currency}}</td></tr></tfoot>
</table>
</body>
</html>
`

var page = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": render.Money,
}).Parse(tmpl))

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (Renderer) Render(_ context.Context, doc render.Document) (render.Rendered, error) {
	if doc.Currency == "" {
		doc.Currency = "EUR"
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, doc); err != nil {
		return render.Rendered{}, fmt.Errorf("htmldoc: %w", err)
	}
	return render.Rendered{
		ContentType: "text/html; charset=utf-8",
		Filename:    "invoice_" + render.FileStem(doc) + ".html",
		Body:        buf.Bytes(),
	}, nil
}
