package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopctl/pkg/apperr"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := apperr.NotFound("Order not found")
	wrapped := fmt.Errorf("loading order: %w", base)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindNotFound))
}

func TestKindOfUntaggedIsInternal(t *testing.T) {
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("disk on fire")))
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.BadRequest("bad"), http.StatusBadRequest},
		{apperr.Unauthorized("no"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Conflict("raced"), http.StatusConflict},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperr.StatusCode(tc.err), tc.err.Error())
	}
}

func TestConflictWithCarriesDetails(t *testing.T) {
	details := []string{"a", "b"}
	err := apperr.ConflictWith("Order cannot be paid", details)

	var e *apperr.Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, details, e.Details)
	assert.EqualError(t, err, "Order cannot be paid")
}
