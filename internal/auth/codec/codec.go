// Package codec firma y verifica tokens con claims arbitrarios y expiración
// obligatoria. No hace I/O: es una transformación pura dado el secreto.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("codec: invalid signature")
	ErrExpired          = errors.New("codec: token expired")
	ErrMalformed        = errors.New("codec: malformed token")
	ErrMissingExpiry    = errors.New("codec: exp claim required")
)

const ClaimExpiry = "exp"

// Claims es el payload del token. Los números se decodifican como json.Number
// para no perder precisión en ids int64.
type Claims map[string]any

// Codec firma con HMAC. Issuer y verifier viven en el mismo dominio de confianza,
// así que no hacen falta claves asimétricas.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type Option func(*Codec)

// WithClock reemplaza el reloj del verificador (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithMethod permite otro algoritmo HMAC (HS384/HS512).
func WithMethod(m *jwt.SigningMethodHMAC) Option {
	return func(c *Codec) { c.method = m }
}

func New(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("codec: secret required")
	}
	c := &Codec{
		secret: []byte(secret),
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Now expone el reloj del codec para que quien emite use la misma fuente de tiempo.
func (c *Codec) Now() time.Time { return c.now() }

// Encode firma claims. Exige un claim exp.
func (c *Codec) Encode(claims Claims) (string, error) {
	if _, ok := claims[ClaimExpiry]; !ok {
		return "", ErrMissingExpiry
	}
	tok := jwt.NewWithClaims(c.method, jwt.MapClaims(claims))
	s, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("codec: sign: %w", err)
	}
	return s, nil
}

// Decode verifica firma y expiración contra el reloj actual, sin margen.
// El token vale hasta exp inclusive: vence recién cuando now > exp.
func (c *Codec) Decode(raw string) (Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	// jwt rechaza en now == exp; la expiración se chequea abajo
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithJSONNumber(),
	)

	mc := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(raw, mc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims := Claims(mc)
	exp, ok := claims.Time(ClaimExpiry)
	if !ok {
		return nil, fmt.Errorf("%w: exp claim missing or invalid", ErrMalformed)
	}
	if c.now().After(exp) {
		return nil, ErrExpired
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// Helpers de lectura tipada. Devuelven ok=false si falta o el tipo no encaja.

func (c Claims) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok && v != ""
}

func (c Claims) Int64(key string) (int64, bool) {
	switch v := c[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		// tokens decodificados sin WithJSONNumber
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func (c Claims) Time(key string) (time.Time, bool) {
	n, ok := c.Int64(key)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(n, 0).UTC(), true
}
