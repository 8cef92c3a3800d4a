package emitters_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rlch/icetype"
	"github.com/rlch/icetype/emitters"
)

func schemas(t *testing.T) []*icetype.IceTypeSchema {
	t.Helper()

	user, err := icetype.ParseDeclarations("User",
		icetype.Field("id", "uuid!"),
		icetype.Field("email", "string#"),
		icetype.Field("age", "int = 18"),
		icetype.Relation("posts", "<- Post.author[]"),
	)
	require.NoError(t, err)

	post, err := icetype.ParseDeclarations("Post",
		icetype.Field("title", "string"),
		icetype.Relation("author", "-> User.posts"),
		icetype.Directive("fts", []any{"title"}),
	)
	require.NoError(t, err)

	return []*icetype.IceTypeSchema{user, post}
}

func emit(t *testing.T, name string, cfg icetype.EmitterConfig) string {
	t.Helper()

	e, err := icetype.NewEmitter(name, cfg)
	require.NoError(t, err)
	assert.Equal(t, name, e.Name())

	var buf bytes.Buffer
	require.NoError(t, e.Emit(&buf, schemas(t)))

	return buf.String()
}

func TestRegisteredEmitters(t *testing.T) {
	t.Parallel()

	names := icetype.RegisteredEmitters()
	assert.Contains(t, names, emitters.JSONName)
	assert.Contains(t, names, emitters.YAMLName)
}

func TestNewEmitter_Unknown(t *testing.T) {
	t.Parallel()

	_, err := icetype.NewEmitter("toml", icetype.EmitterConfig{})
	require.ErrorIs(t, err, icetype.ErrUnknownEmitter)
	assert.Contains(t, err.Error(), "toml")
}

func TestJSONEmitter(t *testing.T) {
	t.Parallel()

	out := emit(t, emitters.JSONName, icetype.EmitterConfig{OmitTimestamps: true})

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "User", decoded[0]["name"])
	assert.Equal(t, "Post", decoded[1]["name"])
	assert.NotContains(t, decoded[0], "createdAt")
	assert.Equal(t, map[string]any{"fts": []any{"title"}}, decoded[1]["directives"])

	age := decoded[0]["fields"].(map[string]any)["age"].(map[string]any)
	assert.Equal(t, float64(18), age["defaultValue"])

	// Relation operators are written literally, not HTML-escaped.
	assert.Contains(t, out, `"operator": "<-"`)
	assert.Contains(t, out, `"operator": "->"`)
	assert.NotContains(t, out, `\u003c`)
	assert.NotContains(t, out, `\u003e`)

	// Declaration order survives encoding.
	assert.Less(t, strings.Index(out, `"id"`), strings.Index(out, `"email"`))
	assert.Less(t, strings.Index(out, `"email"`), strings.Index(out, `"age"`))
	assert.True(t, strings.HasPrefix(out, "[\n  {"), out)
}

func TestJSONEmitter_Indent(t *testing.T) {
	t.Parallel()

	out := emit(t, emitters.JSONName, icetype.EmitterConfig{Indent: 4})
	assert.True(t, strings.HasPrefix(out, "[\n    {"), out)
	assert.Contains(t, out, `"createdAt"`)
}

func TestYAMLEmitter(t *testing.T) {
	t.Parallel()

	out := emit(t, emitters.YAMLName, icetype.EmitterConfig{OmitTimestamps: true})

	dec := yaml.NewDecoder(strings.NewReader(out))

	var docs []map[string]any

	for {
		var doc map[string]any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		docs = append(docs, doc)
	}

	require.Len(t, docs, 2)
	assert.Equal(t, "User", docs[0]["name"])
	assert.Equal(t, 1, docs[0]["version"])
	assert.NotContains(t, docs[0], "createdAt")

	posts := docs[0]["relations"].(map[string]any)["posts"].(map[string]any)
	assert.Equal(t, "<-", posts["operator"])
	assert.Equal(t, "Post", posts["targetType"])
	assert.Equal(t, "author", posts["inverse"])
	assert.Equal(t, true, posts["isArray"])

	assert.Less(t, strings.Index(out, "id:"), strings.Index(out, "email:"))
	assert.Contains(t, out, "\n---\n")
}
