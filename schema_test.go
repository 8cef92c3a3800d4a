package icetype_test

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/icetype"
)

func userRecord() *icetype.Record {
	return icetype.NewRecord().
		Set("$type", "User").
		Set("id", "uuid!").
		Set("email", "string#").
		Set("posts", "-> Post.author[]").
		Set("name", "string").
		Set("$partitionBy", []any{"id"}).
		Set("$unknown", 1).
		Set("balance", "decimal(10,2) = 0")
}

func TestParseSchema(t *testing.T) {
	t.Parallel()

	s, err := icetype.ParseSchema(userRecord())
	require.NoError(t, err)

	assert.Equal(t, "User", s.Name)
	assert.Equal(t, icetype.DefaultVersion, s.Version)
	assert.Equal(t, []string{"id", "email", "name", "balance"}, s.Fields.Keys())
	assert.Equal(t, []string{"posts"}, s.Relations.Keys())
	assert.Equal(t, []string{"id"}, s.Directives.PartitionBy)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	id, ok := s.Fields.Get("id")
	require.True(t, ok)
	assert.True(t, id.IsUnique)

	posts, ok := s.Relations.Get("posts")
	require.True(t, ok)

	if diff := cmp.Diff(&icetype.RelationDefinition{
		Operator: icetype.OpForward, TargetType: "Post", Inverse: "author", IsArray: true,
	}, posts); diff != "" {
		t.Errorf("posts mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for name := range s.Fields.All() {
		names = append(names, name)
	}

	assert.Equal(t, s.Fields.Keys(), names)
}

func TestParseSchema_Unnamed(t *testing.T) {
	t.Parallel()

	s, err := icetype.ParseSchema(icetype.NewRecord().Set("a", "int"))
	require.NoError(t, err)
	assert.Empty(t, s.Name)
	assert.Equal(t, 1, s.Fields.Len())
	assert.Equal(t, 0, s.Relations.Len())
}

func TestParseSchema_FailsFastWithField(t *testing.T) {
	t.Parallel()

	rec := icetype.NewRecord().
		Set("$type", "User").
		Set("ok", "string").
		Set("age", "integer").
		Set("owner", "->")

	_, err := icetype.ParseSchema(rec)
	require.ErrorIs(t, err, icetype.ErrUnknownType)

	var perr *icetype.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "age", perr.Field)
	assert.Equal(t, `"age": 1:1: unknown type: "integer"`, err.Error())
}

func TestParseSchema_RelationError(t *testing.T) {
	t.Parallel()

	_, err := icetype.ParseSchema(icetype.NewRecord().Set("owner", "-> ?"))
	require.ErrorIs(t, err, icetype.ErrMissingTarget)

	var perr *icetype.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "owner", perr.Field)
}

func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	s, err := icetype.ParseDeclarations("Post",
		icetype.Field("title", "string!"),
		icetype.Relation("author", "<- User.posts"),
		icetype.Directive("fts", []string{"title"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "Post", s.Name)
	assert.Equal(t, []string{"title"}, s.Fields.Keys())
	assert.Equal(t, []string{"author"}, s.Relations.Keys())
	assert.Equal(t, []string{"title"}, s.Directives.FTS)
}

func TestParseDeclarations_Duplicate(t *testing.T) {
	t.Parallel()

	_, err := icetype.ParseDeclarations("Post",
		icetype.Field("author", "string"),
		icetype.Relation("author", "-> User"),
	)
	require.ErrorIs(t, err, icetype.ErrInvalidRecord)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, err := icetype.ParseSchema(userRecord())
	require.NoError(t, err)

	b, err := icetype.ParseSchema(userRecord())
	require.NoError(t, err)

	b.CreatedAt = b.CreatedAt.AddDate(1, 0, 0)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed, err := icetype.ParseSchema(userRecord().Set("name", "string!"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), changed.Fingerprint())

	renamed, err := icetype.ParseSchema(userRecord().Set("$type", "Account"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), renamed.Fingerprint())
}

func TestIceTypeSchema_MarshalJSON(t *testing.T) {
	t.Parallel()

	s, err := icetype.ParseSchema(userRecord().Set("tag", "string = '<none>'"))
	require.NoError(t, err)

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(s))

	out := buf.String()

	assert.Contains(t, out, `"name":"User","version":1`)
	assert.Contains(t, out, `"id":{"type":"uuid","modifier":"!","isArray":false,"isOptional":false,"isRequired":true,"isUnique":true,"isIndexed":false}`)
	assert.Contains(t, out, `"posts":{"operator":"->","targetType":"Post","inverse":"author","isArray":true}`)
	assert.Contains(t, out, `"precision":10,"scale":2,"defaultValue":0`)
	assert.Contains(t, out, `"directives":{"partitionBy":["id"]}`)
	assert.Contains(t, out, `"defaultValue":"<none>"`)
	assert.NotContains(t, out, `\u003c`)
	assert.NotContains(t, out, `\u003e`)

	// Fields keep declaration order, not alphabetical order.
	assert.Less(t, strings.Index(out, `"id":`), strings.Index(out, `"email":`))
	assert.Less(t, strings.Index(out, `"email":`), strings.Index(out, `"balance":`))
}

// relationPool and fieldPool are valid expressions used to build records.
var (
	fieldPool    = []string{"uuid!", "string?", "int[]", "decimal(12,4)#", "map<string,int>", "timestamp = now()"}
	relationPool = []string{"-> User", "<- Post.author[]", "~> Topic?", "<~ Doc.refs"}
)

func TestProperty_ParseSchemaPartitionsKeys(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	pool := append(append([]string(nil), fieldPool...), relationPool...)

	properties.Property("every key lands in fields or relations, in order", prop.ForAll(
		func(name string, picks []int) bool {
			rec := icetype.NewRecord().Set("$type", name)

			var wantFields, wantRelations []string

			for i, p := range picks {
				key := "k" + strconv.Itoa(i)
				rec.Set(key, pool[p])

				if p >= len(fieldPool) {
					wantRelations = append(wantRelations, key)
				} else {
					wantFields = append(wantFields, key)
				}
			}

			s, err := icetype.ParseSchema(rec)
			if err != nil {
				return false
			}

			return s.Name == name &&
				cmp.Equal(wantFields, s.Fields.Keys()) &&
				cmp.Equal(wantRelations, s.Relations.Keys()) &&
				s.Fields.Len()+s.Relations.Len() == len(picks)
		},
		gen.Identifier(),
		gen.SliceOf(gen.IntRange(0, len(pool)-1)),
	))

	properties.TestingRun(t)
}
