package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "round not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", New(KindConflict, "coupon already used"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, "coupon expired", Message(New(KindExpired, "coupon expired")))
	assert.Equal(t, "something went wrong", Message(Wrap(KindInternal, "db exploded", errors.New("dial tcp"))))
	assert.Equal(t, "something went wrong", Message(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Wrap(KindInternal, "failed to load", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: fiber.StatusBadRequest,
		KindAuth:       fiber.StatusUnauthorized,
		KindForbidden:  fiber.StatusForbidden,
		KindNotFound:   fiber.StatusNotFound,
		KindConflict:   fiber.StatusConflict,
		KindExpired:    fiber.StatusGone,
		KindExternal:   fiber.StatusBadGateway,
		KindInternal:   fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(kind, "x")), string(kind))
	}
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
