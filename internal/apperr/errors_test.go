package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKindAndSentinelIdentity(t *testing.T) {
	sentinel := NotFound("lead")
	err := Wrap("leads.get", sentinel)

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "leads.get: lead not found", err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, NotFound("quote")))
}

func TestKindOnlyTargetMatchesAnyMessage(t *testing.T) {
	err := InvalidDate("validUntil", "must not be in the past")
	assert.True(t, errors.Is(err, &Error{Kind: KindInvalidDate}))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation}))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap("op", errors.New("boom"))
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.EqualError(t, err, "op: boom")
	assert.Nil(t, Wrap("op", nil))
}

func TestNetworkUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network("GET /leads", cause)
	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation("email", "is required"):  http.StatusBadRequest,
		NotFound("quote"):                   http.StatusNotFound,
		InvalidStatus("unknown"):            http.StatusUnprocessableEntity,
		MissingPrerequisite("no package"):   http.StatusUnprocessableEntity,
		Conflict("tier taken"):              http.StatusConflict,
		Network("op", errors.New("x")):      http.StatusBadGateway,
		Consistency("history chain broken"): http.StatusInternalServerError,
		errors.New("plain"):                 http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestErrorMessageShapes(t *testing.T) {
	assert.Equal(t, "email: is required", Validation("email", "is required").Error())
	assert.Equal(t, "invalid phone", (&Error{Kind: KindValidation, Field: "phone"}).Error())
	assert.Equal(t, "conflict", (&Error{Kind: KindConflict}).Error())
}
