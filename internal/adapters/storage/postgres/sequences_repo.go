package postgres

import (
	"context"
	"database/sql"
)

type Sequencer struct {
	db *sql.DB
}

func NewSequencer(db *sql.DB) *Sequencer {
	return &Sequencer{db: db}
}

// Next es un upsert atómico: la fila (company, prefix, year) queda bloqueada
// durante el UPDATE, así dos llamadas concurrentes nunca ven el mismo valor.
func (s *Sequencer) Next(ctx context.Context, tenantID int64, prefix string, year int) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO number_sequences (company_id, prefix, year, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, prefix, year)
		DO UPDATE SET value = number_sequences.value + 1
		RETURNING value
	`, tenantID, prefix, year).Scan(&v)
	if err != nil {
		return 0, mapErr(err, "sequence")
	}
	return v, nil
}
