package icetype

import (
	"strconv"
	"strings"
)

// TypeKind represents the kind of a type expression.
type TypeKind string

// Type kind constants.
const (
	TypeKindPrimitive  TypeKind = "primitive"  // string, int, uuid, ...
	TypeKindParametric TypeKind = "parametric" // decimal(p,s), varchar(n), ...
	TypeKindGeneric    TypeKind = "generic"    // map<K,V>, list<T>, ref<Name>, ...
	TypeKindNamed      TypeKind = "named"      // user-defined name inside a generic
)

// Canonical base type names.
const (
	TypeString      = "string"
	TypeInt         = "int"
	TypeFloat       = "float"
	TypeDouble      = "double"
	TypeBoolean     = "boolean"
	TypeUUID        = "uuid"
	TypeTimestamp   = "timestamp"
	TypeTimestampTZ = "timestamptz"
	TypeDate        = "date"
	TypeTime        = "time"
	TypeJSON        = "json"
	TypeText        = "text"
	TypeBinary      = "binary"
	TypeLong        = "long"
	TypeBigInt      = "bigint"

	TypeDecimal = "decimal"
	TypeVarchar = "varchar"
	TypeChar    = "char"
	TypeFixed   = "fixed"

	TypeMap    = "map"
	TypeList   = "list"
	TypeStruct = "struct"
	TypeEnum   = "enum"
	TypeRef    = "ref"

	// TypeRelation is the Type of a field whose expression is a relation.
	TypeRelation = "relation"
)

var primitiveTypes = map[string]bool{
	TypeString: true, TypeInt: true, TypeFloat: true, TypeDouble: true,
	TypeBoolean: true, TypeUUID: true, TypeTimestamp: true, TypeTimestampTZ: true,
	TypeDate: true, TypeTime: true, TypeJSON: true, TypeText: true,
	TypeBinary: true, TypeLong: true, TypeBigInt: true,
}

var typeAliases = map[string]string{
	"bool": TypeBoolean,
}

// parametricArity is the allowed argument count range per parametric type.
var parametricArity = map[string][2]int{
	TypeDecimal: {1, 2},
	TypeVarchar: {1, 1},
	TypeChar:    {1, 1},
	TypeFixed:   {1, 1},
}

// genericArity is the argument count per generic type.
var genericArity = map[string]int{
	TypeMap:    2,
	TypeList:   1,
	TypeStruct: 1,
	TypeEnum:   1,
	TypeRef:    1,
}

// MaxDecimalPrecision is the largest accepted decimal precision.
const MaxDecimalPrecision = 38

// TypeExpr is a parsed type expression: one of *PrimitiveType,
// *ParametricType, *GenericType or *NamedType.
type TypeExpr interface {
	Kind() TypeKind
	// BaseName is the canonical lowercase base name, e.g. "decimal".
	BaseName() string
	String() string

	isTypeExpr()
}

// PrimitiveType is a type without arguments, e.g. "uuid".
type PrimitiveType struct {
	Name string
}

// ParametricType is a type with numeric arguments, e.g. "decimal(10,2)".
// Decimal uses Precision and optionally Scale; the others use Length.
type ParametricType struct {
	Name      string
	Precision *int
	Scale     *int
	Length    *int
}

// GenericType is a type with type or name arguments, e.g. "map<string,int>".
type GenericType struct {
	Name string
	Args []TypeExpr
}

// NamedType is a user-defined name used as a generic argument, as in
// "struct<Address>". The name keeps its original casing.
type NamedType struct {
	Name string
}

func (*PrimitiveType) isTypeExpr()  {}
func (*ParametricType) isTypeExpr() {}
func (*GenericType) isTypeExpr()    {}
func (*NamedType) isTypeExpr()      {}

// Kind returns TypeKindPrimitive.
func (*PrimitiveType) Kind() TypeKind { return TypeKindPrimitive }

// Kind returns TypeKindParametric.
func (*ParametricType) Kind() TypeKind { return TypeKindParametric }

// Kind returns TypeKindGeneric.
func (*GenericType) Kind() TypeKind { return TypeKindGeneric }

// Kind returns TypeKindNamed.
func (*NamedType) Kind() TypeKind { return TypeKindNamed }

func (t *PrimitiveType) BaseName() string  { return t.Name }
func (t *ParametricType) BaseName() string { return t.Name }
func (t *GenericType) BaseName() string    { return t.Name }
func (t *NamedType) BaseName() string      { return t.Name }

func (t *PrimitiveType) String() string { return t.Name }

func (t *ParametricType) String() string {
	var args []string

	switch {
	case t.Precision != nil:
		args = append(args, strconv.Itoa(*t.Precision))
		if t.Scale != nil {
			args = append(args, strconv.Itoa(*t.Scale))
		}
	case t.Length != nil:
		args = append(args, strconv.Itoa(*t.Length))
	}

	return t.Name + "(" + strings.Join(args, ",") + ")"
}

func (t *GenericType) String() string {
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}

	return t.Name + "<" + strings.Join(args, ",") + ">"
}

func (t *NamedType) String() string { return t.Name }

// CanonicalTypeName resolves aliases and case. The boolean is false when name
// is not a built-in type.
func CanonicalTypeName(name string) (string, bool) {
	lower := strings.ToLower(name)
	if alias, ok := typeAliases[lower]; ok {
		lower = alias
	}

	if primitiveTypes[lower] {
		return lower, true
	}

	if _, ok := parametricArity[lower]; ok {
		return lower, true
	}

	if _, ok := genericArity[lower]; ok {
		return lower, true
	}

	return "", false
}

// IsPrimitiveType reports whether name (canonical) is a primitive type.
func IsPrimitiveType(name string) bool { return primitiveTypes[name] }

// IsParametricType reports whether name (canonical) takes numeric arguments.
func IsParametricType(name string) bool {
	_, ok := parametricArity[name]
	return ok
}

// IsGenericType reports whether name (canonical) takes type arguments.
func IsGenericType(name string) bool {
	_, ok := genericArity[name]
	return ok
}

// PrimitiveTypes returns the canonical primitive type names.
func PrimitiveTypes() []string {
	return []string{
		TypeString, TypeInt, TypeFloat, TypeDouble, TypeBoolean, TypeUUID,
		TypeTimestamp, TypeTimestampTZ, TypeDate, TypeTime, TypeJSON, TypeText,
		TypeBinary, TypeLong, TypeBigInt,
	}
}
