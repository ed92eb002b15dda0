package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/errors"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"replace", ModeReplace, true},
		{" MERGE ", ModeMerge, true},
		{"", ModeMerge, true},
		{"full", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if !tt.ok {
				assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("Books")
	require.NoError(t, err)
	assert.Equal(t, CollectionBooks, c)

	_, err = ParseCollection("users")
	assert.Error(t, err)
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{"version":1,"generated_at":"2024-01-01T00:00:00Z","notes":"n","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "n", m.Notes)

	_, err = ParseManifest([]byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseManifest([]byte(`[`))
	assert.ErrorIs(t, err, ErrInvalidManifest)

	m, err = ParseManifest([]byte(`{"version":3}`))
	assert.Error(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Version)
}

func TestNewManifest_DefaultNotes(t *testing.T) {
	assert.Equal(t, DefaultNotes, NewManifest("").Notes)
	assert.Equal(t, FormatVersion, NewManifest("x").Version)
}
