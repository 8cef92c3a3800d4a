package icetype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/icetype"
)

func TestFormatField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"uuid!", "uuid!"},
		{"STRING ?", "string?"},
		{"int[]!", "int[]!"},
		{"decimal( 10 , 2 )#", "decimal(10,2)#"},
		{"map<string, list<int>>[]", "map<string,list<int>>[]"},
		{"bool = TRUE", "boolean = true"},
		{"timestamp=now()", "timestamp = now()"},
		{`string = 'it\'s'`, `string = "it's"`},
		{"float = -1.50", "float = -1.5"},
		{"json = {}", "json = {}"},
		{"json = []", "json = []"},
		{"string?=null", "string? = null"},
		{"-> User.posts[]?", "-> User.posts[]?"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			f, err := icetype.ParseField(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, icetype.FormatField(f))
			assert.Equal(t, tt.want, f.String())
		})
	}
}

func TestFormatField_FromFlags(t *testing.T) {
	t.Parallel()

	f := &icetype.FieldDefinition{Type: "int", IsRequired: true, IsIndexed: true}
	assert.Equal(t, "int!#", icetype.FormatField(f))

	f.Default = &icetype.DefaultValue{Kind: icetype.DefaultString, String: "a\"b\\c\nd"}
	assert.Equal(t, `int!# = "a\"b\\c\nd"`, icetype.FormatField(f))
}

func TestFormatRelation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"->User", "-> User"},
		{"<~ Doc", "<~ Doc"},
		{"~> Topic[]", "~> Topic[]"},
		{"<-   Post.author?", "<- Post.author?"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			r, err := icetype.ParseRelation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, icetype.FormatRelation(r))
		})
	}
}

func TestFormatSchema(t *testing.T) {
	t.Parallel()

	rec := icetype.NewRecord().
		Set("$type", "User").
		Set("id", "uuid!").
		Set("posts", "<- Post.author[]").
		Set("email", "string#").
		Set("$partitionBy", []any{"id"})

	s, err := icetype.ParseSchema(rec)
	require.NoError(t, err)

	want := "$type: User\nid: uuid!\nemail: string#\nposts: <- Post.author[]\n$partitionBy: [id]\n"
	assert.Equal(t, want, icetype.FormatSchema(s))
}

func TestFormatSchema_Directives(t *testing.T) {
	t.Parallel()

	s, err := icetype.ParseDeclarations("Doc",
		icetype.Field("body", "text"),
		icetype.Field("embedding", "float[]"),
		icetype.Directive("$index", []any{[]any{"body"}, map[string]any{"fields": []any{"embedding"}, "unique": true}}),
		icetype.Directive("$fts", []any{"body"}),
		icetype.Directive("$vector", map[string]any{"embedding": 3}),
	)
	require.NoError(t, err)

	want := "$type: Doc\n" +
		"body: text\n" +
		"embedding: float[]\n" +
		"$index: [[body], {fields: [embedding], unique: true}]\n" +
		"$fts: [body]\n" +
		"$vector: {embedding: 3}\n"
	assert.Equal(t, want, icetype.FormatSchema(s))
}

func TestProperty_FormatFieldRoundTrips(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	defaults := []string{
		"", " = null", " = true", " = FALSE", " = 0", " = -2.25", ` = 'a\'b'`,
		` = "x\ty"`, " = now()", " = {}", " = []",
	}

	properties.Property("ParseField(FormatField(f)) equals f", prop.ForAll(
		func(base int, array bool, mask int, def int) bool {
			expr := baseExprs[base]
			if array {
				expr += "[]"
			}

			expr += modifierSuffix(mask) + defaults[def]

			f, err := icetype.ParseField(expr)
			if err != nil {
				return false
			}

			again, err := icetype.ParseField(icetype.FormatField(f))
			if err != nil {
				return false
			}

			return cmp.Equal(f, again, cmpIgnoreExpr) && f.TypeString() == again.TypeString()
		},
		gen.IntRange(0, len(baseExprs)-1),
		gen.Bool(),
		gen.IntRange(0, 7),
		gen.IntRange(0, len(defaults)-1),
	))

	properties.TestingRun(t)
}
