package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := NotFound("invoice")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidCapability, http.StatusUnauthorized},
		{NotFound("client"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Validation("bad"), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "%v", tc.err)
	}
}

func TestPublicMessage_HidesCause(t *testing.T) {
	err := Wrap(errors.New("pq: relation missing"), CodeInternal, "db failed")
	assert.Equal(t, "internal error", PublicMessage(err))

	assert.Equal(t, "invoice not found", PublicMessage(NotFound("invoice")))
	assert.Equal(t, "temporarily unavailable", PublicMessage(fmt.Errorf("q: %w", context.DeadlineExceeded)))
}
