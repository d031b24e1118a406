package memory

import (
	"context"

	"invoicing-backend/internal/domain/numbering"
)

type sequencer struct{ s *Store }

func NewSequencer(s *Store) numbering.Sequencer {
	return &sequencer{s: s}
}

// Next incrementa el contador (tenant, prefix, year) bajo el lock del Store.
func (q *sequencer) Next(_ context.Context, tenantID int64, prefix string, year int) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	k := seqKey{tenantID: tenantID, prefix: prefix, year: year}
	q.s.sequences[k]++
	return q.s.sequences[k], nil
}
