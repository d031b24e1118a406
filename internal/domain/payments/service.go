package payments

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/platform/apperr"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/tenancy"
)

const (
	maxMethod       = 50
	maxNote         = 500
	resourceInvoice = "invoice"
)

// InvoiceLookup verifica que la invoice sea del tenant antes de listar pagos.
type InvoiceLookup interface {
	FindOwned(ctx context.Context, tenantID, id int64) (invoices.Invoice, error)
}

type Service struct {
	repo     Repository
	invoices InvoiceLookup
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo Repository, inv InvoiceLookup, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		invoices: inv,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

type RecordInput struct {
	AmountCents int64
	Method      string
	PaidAt      *time.Time
	Note        string
}

// Record agrega un pago y concilia el status de la invoice, todo en una
// transacción: lock de la invoice, insert, suma, update condicional. Dos pagos
// concurrentes sobre la misma invoice se serializan en el lock.
//
// Los montos negativos se rechazan; una corrección no es un pago.
func (s *Service) Record(ctx context.Context, tenantID, invoiceID int64, in RecordInput) (Receipt, error) {
	if err := tenancy.Require(tenantID); err != nil {
		return Receipt{}, err
	}
	if invoiceID <= 0 {
		return Receipt{}, apperr.NotFound(resourceInvoice)
	}
	if in.AmountCents < 0 {
		return Receipt{}, apperr.Validation("amount_cents must be >= 0")
	}
	method := strings.TrimSpace(in.Method)
	if utf8.RuneCountInString(method) > maxMethod {
		return Receipt{}, apperr.Validation("method too long")
	}
	note := strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(note) > maxNote {
		return Receipt{}, apperr.Validation("note too long")
	}

	var rc Receipt
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		inv, err := tx.LockInvoice(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		p, err := tx.Insert(ctx, Payment{
			TenantID:    tenantID,
			InvoiceID:   inv.ID,
			AmountCents: in.AmountCents,
			Method:      method,
			PaidAt:      in.PaidAt,
			Note:        note,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			return err
		}

		sum, err := tx.SumByInvoice(ctx, tenantID, inv.ID)
		if err != nil {
			return err
		}

		next, transition := Reconcile(inv.Status, inv.TotalCents, sum)
		if transition {
			ok, err := tx.UpdateStatusIf(ctx, tenantID, inv.ID, inv.Status, next)
			if err != nil {
				return err
			}
			// con la fila bloqueada no debería fallar; si falla, no inventamos el status
			if !ok {
				next, transition = inv.Status, false
			}
		}

		rc = Receipt{Payment: p, PaidSum: sum, Status: string(next), Transitioned: transition}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Receipt{}, apperr.NotFound(resourceInvoice)
		}
		return Receipt{}, err
	}

	s.metrics.ObservePayment(rc.Transitioned)
	s.log.Info("payment recorded", map[string]any{
		"tenant_id":    tenantID,
		"invoice_id":   invoiceID,
		"payment_id":   rc.Payment.ID,
		"amount_cents": rc.Payment.AmountCents,
		"paid_sum":     rc.PaidSum,
		"status":       rc.Status,
		"transitioned": rc.Transitioned,
	})
	return rc, nil
}

func (s *Service) List(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error) {
	if _, err := tenancy.FindOwned(ctx, s.invoices.FindOwned, tenantID, invoiceID, resourceInvoice); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID, invoiceID)
}
