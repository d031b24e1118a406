// Package memory guarda los jti canjeados en un map en proceso. Sirve para
// una sola instancia; con varias réplicas usar redisledger.
package memory

import (
	"context"
	"sync"
	"time"
)

type Ledger struct {
	mu   sync.Mutex
	seen map[string]time.Time // jti -> expires_at
	now  func() time.Time

	// cada cuántos Consume se barren las entradas vencidas
	sweepEvery int
	calls      int
}

func New() *Ledger {
	return &Ledger{
		seen:       make(map[string]time.Time),
		now:        time.Now,
		sweepEvery: 256,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Consume marca tokenID como canjeado. Devuelve false si ya lo estaba y su
// entrada no venció.
func (l *Ledger) Consume(_ context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%l.sweepEvery == 0 {
		l.sweepLocked(now)
	}

	if exp, ok := l.seen[tokenID]; ok && !now.After(exp) {
		return false, nil
	}
	l.seen[tokenID] = expiresAt
	return true, nil
}

// Sweep borra las entradas vencidas.
func (l *Ledger) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now())
}

func (l *Ledger) sweepLocked(now time.Time) {
	for id, exp := range l.seen {
		if now.After(exp) {
			delete(l.seen, id)
		}
	}
}

// Len es la cantidad de entradas vivas o sin barrer.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
