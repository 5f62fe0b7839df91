package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestNewUserID_Format(t *testing.T) {
	id, err := NewUserID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "user-"))
	nanoidPart := strings.TrimPrefix(id, "user-")
	assert.Len(t, nanoidPart, 21)

	for _, char := range nanoidPart {
		assert.True(t,
			(char >= 'A' && char <= 'Z') ||
				(char >= 'a' && char <= 'z') ||
				(char >= '0' && char <= '9') ||
				char == '_' || char == '-',
			"Character %c should be URL-safe", char)
	}
}

func TestRequestID(t *testing.T) {
	rid := NewRequestID()
	assert.True(t, ValidRequestID(rid))
	assert.NotEqual(t, rid, NewRequestID())

	assert.False(t, ValidRequestID(""))
	assert.False(t, ValidRequestID("not-a-uuid"))
	assert.False(t, ValidRequestID(strings.Repeat("a", 100)))
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate("bench")
	}
}
