// Package redisledger guarda los jti canjeados en Redis con SET NX y TTL
// hasta la expiración del token, compartido entre réplicas.
package redisledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing-backend/internal/platform/apperr"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "capability:jti:"

// SetNXer es el subconjunto de redis.Cmdable que usa el ledger.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type Ledger struct {
	client SetNXer
	prefix string
	now    func() time.Time
}

func New(client SetNXer, prefix string) *Ledger {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Ledger{client: client, prefix: prefix, now: time.Now}
}

// Connect abre un cliente y hace ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

// Consume hace SET NX con TTL hasta expiresAt. Un token ya vencido no se
// registra: el codec lo rechaza antes de llegar acá.
func (l *Ledger) Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	ttl := expiresAt.Sub(l.now())
	if ttl < 0 {
		return false, nil
	}
	// redondeo hacia arriba a segundos; SET EX no acepta fracciones
	ttl = ttl.Truncate(time.Second) + time.Second

	ok, err := l.client.SetNX(ctx, l.Key(tokenID), 1, ttl).Result()
	if err != nil {
		return false, apperr.Wrap(err, apperr.CodeUnavailable, "capability ledger unavailable")
	}
	return ok, nil
}

func (l *Ledger) Key(tokenID string) string { return l.prefix + tokenID }
