package reports

import "time"

// StatusRow es una fila del agregado de quotes por status.
type StatusRow struct {
	Status      string
	Count       int64
	AmountCents int64
}

// MonthRow es el revenue de quotes accepted en un mes (primer día, UTC).
type MonthRow struct {
	Month       time.Time
	AmountCents int64
}
