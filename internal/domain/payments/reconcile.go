package payments

import "invoicing-backend/internal/domain/invoices"

// Reconcile decide el status de la invoice después de un pago. Es binario:
// paid si total > 0 y paidSum >= total; si no, el status no cambia.
//
// Una invoice cancelled nunca pasa a paid; una paid se queda paid aunque la
// suma baje (no hay regresión).
func Reconcile(current invoices.Status, totalCents, paidSum int64) (next invoices.Status, transition bool) {
	if current == invoices.StatusCancelled || current == invoices.StatusPaid {
		return current, false
	}
	if totalCents > 0 && paidSum >= totalCents {
		return invoices.StatusPaid, true
	}
	return current, false
}
