package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DistinctAcrossKinds(t *testing.T) {
	seen := make(map[string]struct{})
	for range 300 {
		for _, gen := range []func() (string, error){Book, Comment, User} {
			id, err := gen()
			require.NoError(t, err)
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 900)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name string
		gen  func() (string, error)
		want string
	}{
		{"book", Book, PrefixBook},
		{"comment", Comment, PrefixComment},
		{"user", User, PrefixUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.gen()
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, tt.want+"-"), "ID: %s", id)

			nanoidPart := strings.TrimPrefix(id, tt.want+"-")
			assert.Len(t, nanoidPart, 21)

			for _, char := range nanoidPart {
				assert.True(t,
					(char >= 'A' && char <= 'Z') ||
						(char >= 'a' && char <= 'z') ||
						(char >= '0' && char <= '9') ||
						char == '_' || char == '-',
					"Character %c should be URL-safe", char)
			}
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate("bench")
	}
}
