package icetype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/rlch/icetype"
)

func TestParseDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		record   *icetype.Record
		expected icetype.Directives
	}{
		{
			name:     "empty",
			record:   icetype.NewRecord(),
			expected: icetype.Directives{},
		},
		{
			name: "partition and fts",
			record: icetype.NewRecord().
				Set("$partitionBy", []any{"tenant", "day"}).
				Set("$fts", []string{"title", "body"}),
			expected: icetype.Directives{
				PartitionBy: []string{"tenant", "day"},
				FTS:         []string{"title", "body"},
			},
		},
		{
			name: "wrong shapes are dropped",
			record: icetype.NewRecord().
				Set("$partitionBy", "tenant").
				Set("$fts", []any{"title", 3}).
				Set("$index", "email").
				Set("$vector", []any{"embedding"}),
			expected: icetype.Directives{},
		},
		{
			name: "index lists and mappings",
			record: icetype.NewRecord().Set("$index", []any{
				[]any{"email"},
				[]any{"tenant", "createdAt"},
				icetype.NewRecord().Set("fields", []any{"slug"}).Set("unique", true),
				map[string]any{"fields": []any{"handle"}},
				[]any{},
				map[string]any{"unique": true},
				42,
			}),
			expected: icetype.Directives{
				Index: []icetype.IndexDirective{
					{Fields: []string{"email"}},
					{Fields: []string{"tenant", "createdAt"}},
					{Fields: []string{"slug"}, Unique: true},
					{Fields: []string{"handle"}},
					{Fields: []string{}},
				},
			},
		},
		{
			name: "vector keeps record order",
			record: icetype.NewRecord().Set("$vector", icetype.NewRecord().
				Set("title_vec", 384).
				Set("body_vec", 1536.0).
				Set("zero", 0).
				Set("negative", -3).
				Set("fraction", 1.5).
				Set("text", "12")),
			expected: icetype.Directives{
				Vector: []icetype.VectorDirective{
					{Field: "title_vec", Dimensions: 384},
					{Field: "body_vec", Dimensions: 1536},
					{Field: "zero", Dimensions: 0},
					{Field: "negative", Dimensions: -3},
				},
			},
		},
		{
			name:   "vector from a Go map is sorted",
			record: icetype.NewRecord().Set("$vector", map[string]any{"b": 3, "a": int64(2)}),
			expected: icetype.Directives{
				Vector: []icetype.VectorDirective{{Field: "a", Dimensions: 2}, {Field: "b", Dimensions: 3}},
			},
		},
		{
			name: "unknown directives and plain keys are ignored",
			record: icetype.NewRecord().
				Set("$type", "User").
				Set("$ttl", "30d").
				Set("name", "string"),
			expected: icetype.Directives{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := icetype.ParseDirectives(tt.record)
			if diff := cmp.Diff(tt.expected, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseDirectives mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDirectives_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, icetype.Directives{}.IsZero())
	assert.False(t, icetype.Directives{FTS: []string{"a"}}.IsZero())
}
