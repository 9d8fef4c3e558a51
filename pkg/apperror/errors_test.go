package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("lookup failed: %w", ErrNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapErrorToStatus(tc.err), "for %v", tc.err)
	}
}

func TestWrapKeepsSentinelChain(t *testing.T) {
	err := Wrap(ErrForbidden, "you can only edit your own reply")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, http.StatusForbidden, MapErrorToStatus(err))
	assert.Equal(t, "you can only edit your own reply", err.Error())
}

func TestAppErrorFallsBackToWrappedMessage(t *testing.T) {
	err := New(http.StatusBadGateway, "", errors.New("upstream down"))

	assert.Equal(t, "upstream down", err.Error())
	assert.Equal(t, http.StatusBadGateway, MapErrorToStatus(err))
}
