package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
)

// toMap runs the transformer and returns the marshaled envelope as a generic map.
func toMap(t *testing.T, status string, v any) map[string]any {
	t.Helper()

	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{name: "success response", status: "200", input: map[string]string{"key": "value"}},
		{name: "created response", status: "201", input: map[string]string{"id": "123"}},
		{name: "empty response", status: "204", input: nil},
		{name: "bad request error", status: "400", input: errors.New("invalid input")},
		{name: "not found error", status: "404", input: domainerrors.NotFound("book not found")},
		{
			name:   "conflict error with details",
			status: "409",
			input: &APIError{
				status:  http.StatusConflict,
				Code:    string(domainerrors.CodeAlreadyExists),
				Message: "category already exists",
				Details: map[string]string{"name": "taken"},
			},
		},
		{name: "internal server error", status: "500", input: errors.New("disk on fire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope := toMap(t, tt.status, tt.input)
			require.Contains(t, envelope, "v", "envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	envelope := toMap(t, "200", map[string]string{"title": "Algebra"})

	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, map[string]any{"title": "Algebra"}, envelope["data"])
	assert.NotContains(t, envelope, "code")
	assert.NotContains(t, envelope, "message")
}

func TestEnvelopeTransformer_DomainError(t *testing.T) {
	err := domainerrors.ValidationWithDetails("validation failed", map[string]string{"tags[1]": "is not a valid tag name"})
	envelope := toMap(t, "400", err)

	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "VALIDATION", envelope["code"])
	assert.Equal(t, "validation failed", envelope["message"])
	assert.Equal(t, map[string]any{"tags[1]": "is not a valid tag name"}, envelope["details"])
	assert.NotContains(t, envelope, "data")
}

func TestEnvelopeTransformer_HidesInternalMessages(t *testing.T) {
	envelope := toMap(t, "500", domainerrors.Wrap(errors.New("sql: connection refused"), domainerrors.CodeInternal, "query failed"))
	assert.Equal(t, "INTERNAL", envelope["code"])
	assert.Equal(t, internalMessage, envelope["message"])

	envelope = toMap(t, "500", errors.New("sql: connection refused"))
	assert.Equal(t, internalMessage, envelope["message"])
}

func TestEnvelopeTransformer_HumaErrorModel(t *testing.T) {
	model := &huma.ErrorModel{
		Status: http.StatusUnprocessableEntity,
		Title:  "Unprocessable Entity",
		Detail: "validation failed",
		Errors: []*huma.ErrorDetail{{Location: "body.title", Message: "expected string"}},
	}
	envelope := toMap(t, "422", model)

	assert.Equal(t, "VALIDATION", envelope["code"])
	assert.Equal(t, "validation failed", envelope["message"])
	assert.Equal(t, map[string]any{"title": "expected string"}, envelope["details"])
}

func TestRegisterErrorHandler_MapsErrors(t *testing.T) {
	RegisterErrorHandler(testLogger)

	t.Run("request validation becomes 400", func(t *testing.T) {
		err := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "query.pageNumber", Message: "required query parameter is missing"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, map[string]string{"query.pageNumber": "required query parameter is missing"}, apiErr.Details)
	})

	t.Run("domain error keeps its status", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "unexpected error occurred", domainerrors.NotFound("note not found"))
		assert.Equal(t, http.StatusNotFound, err.GetStatus())
	})

	t.Run("unknown error is masked", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "unexpected error occurred", errors.New("boom"))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
		assert.Equal(t, "INTERNAL", apiErr.Code)
		assert.Equal(t, internalMessage, apiErr.Message)
	})

	t.Run("too many requests", func(t *testing.T) {
		err := huma.NewError(http.StatusTooManyRequests, "slow down")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "RATE_LIMITED", apiErr.Code)
	})
}

// fixturePath returns testdata/envelope at the repository root.
// Client tests embed the same fixtures to verify parsing compatibility.
func fixturePath(t *testing.T, name string) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to get caller info")

	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(root, "testdata", "envelope", name)
}

func TestEnvelopeContract_MatchesFixtures(t *testing.T) {
	tests := []struct {
		fixture string
		status  string
		input   any
	}{
		{fixture: "success.json", status: "200", input: map[string]string{"id": "test-123", "name": "Test Item"}},
		{fixture: "error.json", status: "404", input: domainerrors.NotFound("book not found")},
		{
			fixture: "validation_error.json",
			status:  "400",
			input:   domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			raw, err := os.ReadFile(fixturePath(t, tt.fixture))
			require.NoError(t, err, "contract tests require the shared fixtures")

			var expected map[string]any
			require.NoError(t, json.Unmarshal(raw, &expected))

			assert.Equal(t, expected, toMap(t, tt.status, tt.input))
		})
	}
}
