package icetype_test

import (
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rlch/icetype"
)

// cmpIgnoreExpr compares field definitions without their structured type,
// which tests check through TypeString instead.
var cmpIgnoreExpr = cmp.Options{
	cmpopts.IgnoreFields(icetype.FieldDefinition{}, "Expr"),
}

// ptr returns a pointer to the given value.
func ptr[T any](v T) *T {
	return &v
}

// primitiveExprs lists every primitive spelling, including the bool alias.
var primitiveExprs = []string{
	"string", "int", "float", "double", "boolean", "bool", "uuid", "timestamp",
	"timestamptz", "date", "time", "json", "text", "binary", "long", "bigint",
}

// baseExprs lists one valid base type of every kind.
var baseExprs = append(slicesClone(primitiveExprs),
	"decimal(10,2)", "decimal(38)", "varchar(255)", "char(3)", "fixed(16)",
	"map<string,int>", "list<string>", "list<map<string,list<int>>>",
	"struct<Address>", "enum<Status>", "ref<User>",
)

func slicesClone(s []string) []string {
	return append([]string(nil), s...)
}

// modifierSuffix renders the modifiers selected by the low three bits of mask.
func modifierSuffix(mask int) string {
	var b strings.Builder

	if mask&1 != 0 {
		b.WriteByte('!')
	}

	if mask&2 != 0 {
		b.WriteByte('?')
	}

	if mask&4 != 0 {
		b.WriteByte('#')
	}

	return b.String()
}

// fragments are grammar-shaped pieces for building adversarial inputs.
var fragments = []string{
	"string", "int", "bool", "decimal", "varchar", "map", "list", "struct", "ref",
	"User", "posts", "(", ")", "<", ">", ",", "[", "]", "{", "}", "!", "?", "#",
	"=", "null", "true", "now", "()", "'x'", `"y`, `\`, "->", "~>", "<-", "<~",
	".", "-", "-1", "3.5", "10", "$index", " ", "\n", "@", ":", "|",
}

func joinFragments(parts []int) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(fragments[p])
	}

	return b.String()
}
