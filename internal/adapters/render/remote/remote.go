// Package remote delega el render a un servicio externo (HTML -> PDF) que
// recibe el Document como JSON y responde el archivo.
package remote

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/httpclient"
	"invoicing-backend/internal/ports/render"
)

const (
	renderPath     = "/render/invoice"
	defaultTimeout = 15 * time.Second
	pdfContentType = "application/pdf"
)

type Renderer struct {
	http *httpclient.Client
}

func New(baseURL string) (*Renderer, error) {
	c, err := httpclient.NewWithBaseURL(baseURL, defaultTimeout)
	if err != nil {
		return nil, err
	}
	return &Renderer{http: c}, nil
}

// NewWithClient permite inyectar el cliente (tests).
func NewWithClient(c *httpclient.Client) *Renderer {
	return &Renderer{http: c}
}

func (r *Renderer) Render(ctx context.Context, doc render.Document) (render.Rendered, error) {
	resp, err := r.http.DoBytes(ctx, http.MethodPost, renderPath, map[string]string{
		"Accept": pdfContentType,
	}, doc)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode >= 500 {
			return render.Rendered{}, apperr.Wrap(err, apperr.CodeUnavailable, "renderer unavailable")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return render.Rendered{}, apperr.Wrap(err, apperr.CodeUnavailable, "renderer unavailable")
		}
		return render.Rendered{}, apperr.Wrap(err, apperr.CodeInternal, "render invoice")
	}

	ct := resp.ContentType
	if ct == "" {
		ct = pdfContentType
	}
	return render.Rendered{
		ContentType: ct,
		Filename:    "invoice_" + stem(doc) + extFor(ct),
		Body:        resp.Body,
	}, nil
}

func stem(doc render.Document) string {
	if doc.Number != "" {
		return doc.Number
	}
	return strconv.FormatInt(doc.InvoiceID, 10)
}

func extFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, pdfContentType):
		return ".pdf"
	case strings.HasPrefix(contentType, "text/html"):
		return ".html"
	default:
		return ".bin"
	}
}
