package validation_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/validation"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"displayName" validate:"required,notblank,max=100"`
}

type noteRequest struct {
	Content    string   `json:"content" validate:"notblank,max=20000"`
	PageNumber int      `json:"pageNumber" validate:"gte=1"`
	Tags       []string `json:"tags" validate:"max=50,dive,tagname"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{
		Email:       "alice@example.com",
		Password:    "password123",
		DisplayName: "Alice",
	})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
	}{
		{
			name:      "missing display name",
			req:       registerRequest{Email: "a@example.com", Password: "password123"},
			wantField: "displayName",
		},
		{
			name:      "blank display name",
			req:       registerRequest{Email: "a@example.com", Password: "password123", DisplayName: "   "},
			wantField: "displayName",
		},
		{
			name:      "invalid email",
			req:       registerRequest{Email: "not-an-email", Password: "password123", DisplayName: "A"},
			wantField: "email",
		},
		{
			name:      "password too short",
			req:       registerRequest{Email: "a@example.com", Password: "short", DisplayName: "A"},
			wantField: "password",
		},
		{
			name:      "page number zero",
			req:       noteRequest{Content: "x", PageNumber: 0},
			wantField: "pageNumber",
		},
		{
			name:      "whitespace content",
			req:       noteRequest{Content: " \t ", PageNumber: 1},
			wantField: "content",
		},
		{
			name:      "tag too long",
			req:       noteRequest{Content: "x", PageNumber: 1, Tags: []string{"ok", strings.Repeat("t", 65)}},
			wantField: "tags[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Contains(t, domainErr.Message, tt.wantField)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_TagNameCountsRunesAfterNormalization(t *testing.T) {
	v := validation.New()

	// 64 runes of a multibyte letter plus surrounding whitespace is still valid.
	tag := "  " + strings.Repeat("é", 64) + "  "
	assert.NoError(t, v.Validate(noteRequest{Content: "x", PageNumber: 1, Tags: []string{tag}}))
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("page", 3, "gte=1"))

	err := v.Var("page", 0, "gte=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "page")
}
