package codec

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	now := t0
	c, err := New("secret", WithClock(fixedClock(&now)))
	require.NoError(t, err)

	raw, err := c.Encode(Claims{
		"sub":         "ana@example.com",
		"tenant_id":   int64(9007199254740993), // > 2^53
		ClaimExpiry:   now.Add(time.Hour).Unix(),
		"custom_flag": true,
	})
	require.NoError(t, err)

	claims, err := c.Decode(raw)
	require.NoError(t, err)

	sub, ok := claims.String("sub")
	assert.True(t, ok)
	assert.Equal(t, "ana@example.com", sub)

	tenant, ok := claims.Int64("tenant_id")
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), tenant)

	exp, ok := claims.Time(ClaimExpiry)
	assert.True(t, ok)
	assert.Equal(t, now.Add(time.Hour), exp)
	assert.Equal(t, true, claims["custom_flag"])
}

func TestEncode_RequiresExpiry(t *testing.T) {
	c, _ := New("secret")
	_, err := c.Encode(Claims{"sub": "x"})
	assert.ErrorIs(t, err, ErrMissingExpiry)
}

func TestDecode_ExpiryHasNoGraceWindow(t *testing.T) {
	now := t0
	c, _ := New("secret", WithClock(fixedClock(&now)))
	raw, err := c.Encode(Claims{ClaimExpiry: t0.Add(10 * time.Second).Unix()})
	require.NoError(t, err)

	now = t0.Add(9 * time.Second)
	_, err = c.Decode(raw)
	require.NoError(t, err)

	// now == exp todavía vale
	now = t0.Add(10 * time.Second)
	_, err = c.Decode(raw)
	require.NoError(t, err)

	now = t0.Add(10*time.Second + time.Millisecond)
	_, err = c.Decode(raw)
	assert.ErrorIs(t, err, ErrExpired)

	now = t0.Add(11 * time.Second)
	_, err = c.Decode(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestDecode_WrongSecret(t *testing.T) {
	a, _ := New("secret-a")
	b, _ := New("secret-b")
	raw, err := a.Encode(Claims{ClaimExpiry: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	_, err = b.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_TamperedPayload(t *testing.T) {
	c, _ := New("secret")
	raw, _ := c.Encode(Claims{"tenant_id": 1, ClaimExpiry: time.Now().Add(time.Hour).Unix()})
	other, _ := c.Encode(Claims{"tenant_id": 2, ClaimExpiry: time.Now().Add(time.Hour).Unix()})

	// payload de otro token con la firma del primero
	p1 := strings.Split(raw, ".")
	p2 := strings.Split(other, ".")
	forged := p1[0] + "." + p2[1] + "." + p1[2]

	_, err := c.Decode(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecode_Malformed(t *testing.T) {
	c, _ := New("secret")
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := c.Decode(raw)
		assert.Error(t, err, raw)
		assert.False(t, errors.Is(err, ErrExpired), raw)
	}
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := New("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{ClaimExpiry: time.Now().Add(time.Hour).Unix()})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Decode(raw)
	assert.Error(t, err)
}

func TestDecode_MissingExpiry(t *testing.T) {
	c, _ := New("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"})
	raw, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}
