package domain

import (
	"encoding/json/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"fantasy", []string{"fantasy"}},
		{" fantasy , sci-fi ,, classic ", []string{"fantasy", "sci-fi", "classic"}},
		{" , ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.input))
		})
	}
}

func TestBook_SearchText(t *testing.T) {
	b := &Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Year:        "1965",
		Tags:        []string{"SciFi", "Classic"},
		Description: "Spice",
	}

	assert.Equal(t, "dune frank herbert 1965 scifi classic spice", b.SearchText())
}

func TestBook_JSONIsFlat(t *testing.T) {
	b := Book{
		Record: Record{ID: "book-1", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Title:  "Dune",
		Tags:   []string{},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "book-1", raw["id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["created_at"])
	assert.Equal(t, "", raw["cover_path"])
	assert.NotContains(t, raw, "cover_blurhash")
	assert.NotContains(t, raw, "Record")
}

func TestRecord_InitTimestampsUTC(t *testing.T) {
	var r Record
	r.InitTimestamps()

	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.WithinDuration(t, time.Now(), r.CreatedAt, time.Second)
}
