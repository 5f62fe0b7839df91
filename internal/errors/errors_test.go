package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:           http.StatusNotFound,
		CodeAlreadyExists:      http.StatusConflict,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeInvalidCredentials: http.StatusUnauthorized,
		CodeValidation:         http.StatusBadRequest,
		CodeTooLarge:           http.StatusRequestEntityTooLarge,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeInternal:           http.StatusInternalServerError,
		Code("SOMETHING_ELSE"):  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("delete book: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "failed to save note")

	assert.Equal(t, "failed to save note: disk full", err.Error())
	assert.True(t, Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestWithDetails(t *testing.T) {
	base := Validation("invalid request")
	detailed := base.WithDetails(map[string]string{"title": "is required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"title": "is required"}, detailed.Details)
	assert.Equal(t, CodeValidation, detailed.Code)
}
