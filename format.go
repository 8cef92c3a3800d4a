package icetype

import (
	"strconv"
	"strings"
)

// FormatField renders f as a field expression that ParseField accepts:
// type, array suffix, modifiers, then the default.
func FormatField(f *FieldDefinition) string {
	if f.Relation != nil {
		return FormatRelation(f.Relation)
	}

	var fm formatter

	fm.write(f.TypeString())

	if f.IsArray {
		fm.write("[]")
	}

	fm.write(modifierText(f))

	if f.Default != nil {
		fm.write(" = ")
		fm.formatDefault(f.Default)
	}

	return fm.String()
}

// FormatRelation renders r as a relation expression that ParseRelation accepts.
func FormatRelation(r *RelationDefinition) string {
	var fm formatter

	fm.write(string(r.Operator))
	fm.write(" ")
	fm.write(r.TargetType)

	if r.HasInverse() {
		fm.write(".")
		fm.write(r.Inverse)
	}

	if r.IsArray {
		fm.write("[]")
	}

	if r.IsOptional {
		fm.write("?")
	}

	return fm.String()
}

// String returns the canonical field expression.
func (f *FieldDefinition) String() string { return FormatField(f) }

// String returns the canonical relation expression.
func (r *RelationDefinition) String() string { return FormatRelation(r) }

// FormatSchema renders s as one "key: value" line per declaration, in the
// shape of the record it was parsed from. Fields come before relations and
// directives come last.
func FormatSchema(s *IceTypeSchema) string {
	var fm formatter

	if s.Name != "" {
		fm.writeLine(KeyType, s.Name)
	}

	for name, field := range s.Fields.All() {
		fm.writeLine(name, FormatField(field))
	}

	for name, rel := range s.Relations.All() {
		fm.writeLine(name, FormatRelation(rel))
	}

	fm.formatDirectives(s.Directives)

	return fm.String()
}

// modifierText returns the literal modifiers, or rebuilds them from the flags
// for definitions constructed by hand.
func modifierText(f *FieldDefinition) string {
	if f.Modifier != "" {
		return f.Modifier
	}

	var b strings.Builder

	if f.IsRequired {
		b.WriteByte(ModifierRequired)
	}

	if f.IsOptional {
		b.WriteByte(ModifierOptional)
	}

	if f.IsIndexed {
		b.WriteByte(ModifierIndexed)
	}

	return b.String()
}

type formatter struct {
	b strings.Builder
}

func (f *formatter) write(s string) {
	f.b.WriteString(s)
}

func (f *formatter) writeLine(key, value string) {
	f.write(key)
	f.write(": ")
	f.write(value)
	f.write("\n")
}

func (f *formatter) String() string {
	return f.b.String()
}

func (f *formatter) formatDefault(d *DefaultValue) {
	switch d.Kind {
	case DefaultNull:
		f.write("null")
	case DefaultBool:
		f.write(strconv.FormatBool(d.Bool))
	case DefaultNumber:
		f.write(strconv.FormatFloat(d.Number, 'f', -1, 64))
	case DefaultString:
		f.write(quoteString(d.String))
	case DefaultFunction:
		f.write(d.String)
		f.write("()")
	case DefaultEmptyObject:
		f.write("{}")
	case DefaultEmptyArray:
		f.write("[]")
	}
}

func (f *formatter) formatDirectives(d Directives) {
	if len(d.PartitionBy) > 0 {
		f.writeLine(KeyPartitionBy, nameList(d.PartitionBy))
	}

	if len(d.Index) > 0 {
		items := make([]string, len(d.Index))
		for i, idx := range d.Index {
			items[i] = nameList(idx.Fields)
			if idx.Unique {
				items[i] = "{fields: " + items[i] + ", unique: true}"
			}
		}

		f.writeLine(KeyIndex, "["+strings.Join(items, ", ")+"]")
	}

	if len(d.FTS) > 0 {
		f.writeLine(KeyFTS, nameList(d.FTS))
	}

	if len(d.Vector) > 0 {
		items := make([]string, len(d.Vector))
		for i, v := range d.Vector {
			items[i] = v.Field + ": " + strconv.Itoa(v.Dimensions)
		}

		f.writeLine(KeyVector, "{"+strings.Join(items, ", ")+"}")
	}
}

func nameList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// quoteString double-quotes s using the escapes unquote understands.
func quoteString(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')

	return b.String()
}
