package icetype_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rlch/icetype"
)

func TestRecord_UnmarshalYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	src := `
$type: User
zeta: string
alpha: int!
posts: -> Post.author[]
$index:
  - [alpha, zeta]
  - fields: [zeta]
    unique: true
`

	var rec icetype.Record
	require.NoError(t, yaml.Unmarshal([]byte(src), &rec))

	assert.Equal(t, []string{"$type", "zeta", "alpha", "posts", "$index"}, rec.Keys())
	assert.Equal(t, 4, rec.KeyLine("alpha"))
	assert.Equal(t, 0, rec.KeyLine("missing"))

	index, ok := rec.Get("$index")
	require.True(t, ok)

	items, ok := index.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, []any{"alpha", "zeta"}, items[0])

	nested, ok := items[1].(*icetype.Record)
	require.True(t, ok)
	assert.Equal(t, []string{"fields", "unique"}, nested.Keys())
}

func TestRecord_UnmarshalRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		field string
		json  bool
	}{
		{name: "field", src: "$type: A\nid: uuid\nid: int\n", field: "id"},
		{name: "directive", src: "$fts: [a]\na: text\n$fts: [b]\n", field: "$fts"},
		{name: "nested", src: "$index:\n  - fields: [a]\n    fields: [b]\n", field: "fields"},
		{name: "json", src: `{"id": "uuid", "id": "int"}`, field: "id", json: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				rec icetype.Record
				err error
			)

			if tt.json {
				err = json.Unmarshal([]byte(tt.src), &rec)
			} else {
				err = yaml.Unmarshal([]byte(tt.src), &rec)
			}

			require.ErrorIs(t, err, icetype.ErrInvalidRecord)

			var perr *icetype.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
			assert.Contains(t, err.Error(), "duplicate key")
		})
	}
}

func TestRecord_DuplicateKeyLines(t *testing.T) {
	t.Parallel()

	var rec icetype.Record

	err := yaml.Unmarshal([]byte("$type: A\nid: uuid\nname: string\nid: int\n"), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key at line 4 (first at line 2)")
}

func TestRecord_UnmarshalJSONKeepsOrder(t *testing.T) {
	t.Parallel()

	var rec icetype.Record
	require.NoError(t, json.Unmarshal([]byte(`{"$type":"Post","title":"string!","body":"text","$vector":{"embedding":3}}`), &rec))

	assert.Equal(t, []string{"$type", "title", "body", "$vector"}, rec.Keys())

	vec, _ := rec.Get("$vector")
	nested, ok := vec.(*icetype.Record)
	require.True(t, ok)

	dims, _ := nested.Get("embedding")
	assert.Equal(t, 3, dims)
}

func TestRecord_UnmarshalRejectsNonMapping(t *testing.T) {
	t.Parallel()

	var rec icetype.Record
	err := yaml.Unmarshal([]byte("- a\n- b\n"), &rec)
	require.ErrorIs(t, err, icetype.ErrInvalidRecord)
}

func TestRecord_Set(t *testing.T) {
	t.Parallel()

	rec := icetype.NewRecord().Set("b", 1).Set("a", 2).Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, rec.Keys())
	assert.Equal(t, 2, rec.Len())

	v, ok := rec.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	var nilRec *icetype.Record
	assert.Equal(t, 0, nilRec.Len())
	assert.Nil(t, nilRec.Keys())
}

func TestRecordFromMap_SortsKeys(t *testing.T) {
	t.Parallel()

	rec := icetype.RecordFromMap(map[string]any{"c": "int", "a": "string", "$type": "X"})
	assert.Equal(t, []string{"$type", "a", "c"}, rec.Keys())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	rec := icetype.NewRecord().
		Set("$type", "User").
		Set("id", "uuid!").
		Set("posts", " <- Post.author[]").
		Set("$fts", []any{"bio"}).
		Set("bio", "text")

	name, decls, err := icetype.Classify(rec)
	require.NoError(t, err)
	assert.Equal(t, "User", name)

	assert.Equal(t, []icetype.Declaration{
		icetype.Field("id", "uuid!"),
		icetype.Relation("posts", " <- Post.author[]"),
		icetype.Directive("fts", []any{"bio"}),
		icetype.Field("bio", "text"),
	}, decls)
}

func TestClassify_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := icetype.Classify(icetype.NewRecord().Set("$type", 12))
	require.ErrorIs(t, err, icetype.ErrInvalidRecord)

	_, _, err = icetype.Classify(icetype.NewRecord().Set("age", 12))
	require.ErrorIs(t, err, icetype.ErrInvalidRecord)

	var perr *icetype.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "age", perr.Field)
	assert.Contains(t, err.Error(), `"age"`)
}

func TestDirective_AddsSigil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$index", icetype.Directive("index", nil).DeclName())
	assert.Equal(t, "$index", icetype.Directive("$index", nil).DeclName())
}
