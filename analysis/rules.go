package analysis

import (
	"github.com/rlch/icetype"
)

// Rule represents a semantic analysis check.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the set.
	Run func(s *AnalyzedSet)
}

// DefaultRules returns all built-in rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		duplicateSchemaRule,
		unknownRelationTargetRule,
		inverseMismatchRule,
		unknownDirectiveFieldRule,

		// Warning-level checks.
		unnamedSchemaRule,
		unmatchedBackwardRelationRule,
		conflictingModifiersRule,
		vectorFieldTypeRule,
		vectorDimensionsRule,
		ftsFieldTypeRule,
		emptyIndexRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-schema
// ----------------------------------------------------------------------------

var duplicateSchemaRule = &Rule{
	Name:     "duplicate-schema",
	Doc:      "Reports schemas that share a $type.",
	Severity: SeverityError,
	Run:      checkDuplicateSchemas,
}

func checkDuplicateSchemas(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		others := s.ByName[in.Schema.Name]
		if len(others) > 1 && others[0] != in {
			s.report(in, "", SeverityError, "duplicate-schema",
				"schema %s is already declared in %s", in.Schema.Name, others[0].Path)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: unnamed-schema
// ----------------------------------------------------------------------------

var unnamedSchemaRule = &Rule{
	Name:     "unnamed-schema",
	Doc:      "Reports records without a $type.",
	Severity: SeverityWarning,
	Run:      checkUnnamedSchemas,
}

func checkUnnamedSchemas(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		if in.Schema.Name == "" {
			s.report(in, "", SeverityWarning, "unnamed-schema", "schema has no %s", icetype.KeyType)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: unknown-relation-target
// ----------------------------------------------------------------------------

var unknownRelationTargetRule = &Rule{
	Name:     "unknown-relation-target",
	Doc:      "Reports relations whose target entity is not declared.",
	Severity: SeverityError,
	Run:      checkUnknownRelationTargets,
}

func checkUnknownRelationTargets(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for name, rel := range in.Schema.Relations.All() {
			if _, ok := s.Lookup(rel.TargetType); !ok {
				s.report(in, name, SeverityError, "unknown-relation-target",
					"relation %s targets undeclared schema %s", name, rel.TargetType)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: inverse-mismatch
// ----------------------------------------------------------------------------

var inverseMismatchRule = &Rule{
	Name:     "inverse-mismatch",
	Doc:      "Reports inverses that do not exist on the target or point elsewhere.",
	Severity: SeverityError,
	Run:      checkInverseMismatches,
}

func checkInverseMismatches(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for name, rel := range in.Schema.Relations.All() {
			if !rel.HasInverse() {
				continue
			}

			target, ok := s.Lookup(rel.TargetType)
			if !ok {
				continue // unknown-relation-target
			}

			if target.Schema.Fields.Has(rel.Inverse) {
				s.report(in, name, SeverityError, "inverse-mismatch",
					"inverse %s.%s is a field, not a relation", rel.TargetType, rel.Inverse)

				continue
			}

			back, ok := target.Schema.Relations.Get(rel.Inverse)
			if !ok {
				s.report(in, name, SeverityError, "inverse-mismatch",
					"inverse %s.%s is not declared", rel.TargetType, rel.Inverse)

				continue
			}

			if back.TargetType != in.Schema.Name {
				s.report(in, name, SeverityError, "inverse-mismatch",
					"inverse %s.%s targets %s, not %s", rel.TargetType, rel.Inverse, back.TargetType, in.Schema.Name)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: unmatched-backward-relation
// ----------------------------------------------------------------------------

var unmatchedBackwardRelationRule = &Rule{
	Name:     "unmatched-backward-relation",
	Doc:      "Reports backward relations with no forward relation on the target.",
	Severity: SeverityWarning,
	Run:      checkUnmatchedBackwardRelations,
}

func checkUnmatchedBackwardRelations(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for name, rel := range in.Schema.Relations.All() {
			if rel.Operator.IsForward() || rel.HasInverse() {
				continue
			}

			target, ok := s.Lookup(rel.TargetType)
			if !ok {
				continue
			}

			if !hasForwardTo(target.Schema, in.Schema.Name, rel.Operator.IsFuzzy()) {
				s.report(in, name, SeverityWarning, "unmatched-backward-relation",
					"%s has no %s relation to %s", rel.TargetType, forwardOf(rel.Operator), in.Schema.Name)
			}
		}
	}
}

func hasForwardTo(schema *icetype.IceTypeSchema, target string, fuzzy bool) bool {
	for _, rel := range schema.Relations.All() {
		if rel.Operator.IsForward() && rel.Operator.IsFuzzy() == fuzzy && rel.TargetType == target {
			return true
		}
	}

	return false
}

func forwardOf(op icetype.RelationOperator) icetype.RelationOperator {
	if op.IsFuzzy() {
		return icetype.OpFuzzyForward
	}

	return icetype.OpForward
}

// ----------------------------------------------------------------------------
// Rule: unknown-directive-field
// ----------------------------------------------------------------------------

var unknownDirectiveFieldRule = &Rule{
	Name:     "unknown-directive-field",
	Doc:      "Reports directives that name undeclared fields.",
	Severity: SeverityError,
	Run:      checkUnknownDirectiveFields,
}

func checkUnknownDirectiveFields(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		d := in.Schema.Directives

		check := func(directive string, names ...string) {
			for _, name := range names {
				if !in.Schema.Fields.Has(name) && !in.Schema.Relations.Has(name) {
					s.report(in, directive, SeverityError, "unknown-directive-field",
						"%s names undeclared field %s", directive, name)
				}
			}
		}

		check(icetype.KeyPartitionBy, d.PartitionBy...)

		for _, idx := range d.Index {
			check(icetype.KeyIndex, idx.Fields...)
		}

		check(icetype.KeyFTS, d.FTS...)

		for _, v := range d.Vector {
			check(icetype.KeyVector, v.Field)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: conflicting-modifiers
// ----------------------------------------------------------------------------

var conflictingModifiersRule = &Rule{
	Name:     "conflicting-modifiers",
	Doc:      "Reports fields marked both required (!) and optional (?).",
	Severity: SeverityWarning,
	Run:      checkConflictingModifiers,
}

func checkConflictingModifiers(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for name, field := range in.Schema.Fields.All() {
			if field.IsRequired && field.IsOptional {
				s.report(in, name, SeverityWarning, "conflicting-modifiers",
					"field %s is both required and optional (%q)", name, field.Modifier)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: vector-field-type
// ----------------------------------------------------------------------------

var vectorFieldTypeRule = &Rule{
	Name:     "vector-field-type",
	Doc:      "Reports $vector fields that are not float arrays.",
	Severity: SeverityWarning,
	Run:      checkVectorFieldTypes,
}

func checkVectorFieldTypes(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for _, v := range in.Schema.Directives.Vector {
			field, ok := in.Schema.Fields.Get(v.Field)
			if !ok || isFloatVector(field) {
				continue
			}

			s.report(in, icetype.KeyVector, SeverityWarning, "vector-field-type",
				"vector field %s should be float[] or list<float>, got %s", v.Field, field.String())
		}
	}
}

func isFloatVector(f *icetype.FieldDefinition) bool {
	isFloat := func(name string) bool {
		return name == icetype.TypeFloat || name == icetype.TypeDouble
	}

	if f.IsArray {
		return isFloat(f.Type)
	}

	if g, ok := f.Expr.(*icetype.GenericType); ok && g.Name == icetype.TypeList {
		return isFloat(g.Args[0].BaseName())
	}

	return false
}

// ----------------------------------------------------------------------------
// Rule: vector-dimensions
// ----------------------------------------------------------------------------

var vectorDimensionsRule = &Rule{
	Name:     "vector-dimensions",
	Doc:      "Reports $vector entries whose dimensions are not positive.",
	Severity: SeverityWarning,
	Run:      checkVectorDimensions,
}

func checkVectorDimensions(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for _, v := range in.Schema.Directives.Vector {
			if v.Dimensions < 1 {
				s.report(in, icetype.KeyVector, SeverityWarning, "vector-dimensions",
					"vector field %s has %d dimensions", v.Field, v.Dimensions)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: empty-index
// ----------------------------------------------------------------------------

var emptyIndexRule = &Rule{
	Name:     "empty-index",
	Doc:      "Reports $index entries that name no fields.",
	Severity: SeverityWarning,
	Run:      checkEmptyIndexes,
}

func checkEmptyIndexes(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for i, idx := range in.Schema.Directives.Index {
			if len(idx.Fields) == 0 {
				s.report(in, icetype.KeyIndex, SeverityWarning, "empty-index",
					"index %d names no fields", i)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: fts-field-type
// ----------------------------------------------------------------------------

var ftsFieldTypeRule = &Rule{
	Name:     "fts-field-type",
	Doc:      "Reports $fts fields that are not string or text.",
	Severity: SeverityWarning,
	Run:      checkFTSFieldTypes,
}

func checkFTSFieldTypes(s *AnalyzedSet) {
	for _, in := range s.Inputs {
		for _, name := range in.Schema.Directives.FTS {
			field, ok := in.Schema.Fields.Get(name)
			if !ok || field.Type == icetype.TypeString || field.Type == icetype.TypeText {
				continue
			}

			s.report(in, icetype.KeyFTS, SeverityWarning, "fts-field-type",
				"full-text field %s should be string or text, got %s", name, field.String())
		}
	}
}
