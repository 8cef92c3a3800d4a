// Package analysis validates a set of assembled schemas against each other.
//
// Parsing a single record never looks at other entities. Checks that need
// the whole set, such as whether a relation target exists, run here as rules
// producing diagnostics.
package analysis

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rlch/icetype"
)

// DiagnosticSeverity is the severity of a diagnostic.
type DiagnosticSeverity int

// Severities, ordered from most to least severe.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}

	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic is one finding of a rule.
type Diagnostic struct {
	// Path is the file of the schema, if known.
	Path string
	// Line is the source line of the offending key, 0 when unknown.
	Line int
	// Schema and Field locate the finding in the model.
	Schema string
	Field  string

	Severity DiagnosticSeverity
	Message  string
	Code     string
	Source   string
}

func (d Diagnostic) String() string {
	loc := d.Path
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}

	if loc != "" {
		loc += ": "
	}

	return fmt.Sprintf("%s%s: %s [%s]", loc, d.Severity, d.Message, d.Code)
}

// Input is one schema handed to the analyzer.
type Input struct {
	Path   string
	Schema *icetype.IceTypeSchema
	// Record is the record the schema was parsed from. Optional; used for
	// line numbers.
	Record *icetype.Record
}

// AnalyzedSet holds the inputs of one analysis run and its diagnostics.
type AnalyzedSet struct {
	Inputs []*Input

	// ByName indexes the inputs by schema name. Unnamed schemas are absent.
	ByName map[string][]*Input

	Diagnostics []Diagnostic
}

// Lookup returns the first schema named name.
func (s *AnalyzedSet) Lookup(name string) (*Input, bool) {
	inputs := s.ByName[name]
	if len(inputs) == 0 {
		return nil, false
	}

	return inputs[0], true
}

// HasErrors reports whether any diagnostic is an error.
func (s *AnalyzedSet) HasErrors() bool {
	return slices.ContainsFunc(s.Diagnostics, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}

func (s *AnalyzedSet) report(in *Input, field string, severity DiagnosticSeverity, code, format string, args ...any) {
	d := Diagnostic{
		Path:     in.Path,
		Schema:   in.Schema.Name,
		Field:    field,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Source:   "icetype",
	}

	if field != "" {
		d.Line = in.Record.KeyLine(field)
	} else {
		d.Line = in.Record.KeyLine(icetype.KeyType)
	}

	s.Diagnostics = append(s.Diagnostics, d)
}

// Analyzer runs rules over a set of schemas.
type Analyzer struct {
	rules []*Rule
}

// NewAnalyzer creates an analyzer with the default rules.
func NewAnalyzer() *Analyzer {
	return &Analyzer{rules: DefaultRules()}
}

// NewAnalyzerWithRules creates an analyzer with custom rules.
func NewAnalyzerWithRules(rules []*Rule) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze runs every rule and returns the diagnostics sorted by path, line
// and code.
func (a *Analyzer) Analyze(inputs []*Input) *AnalyzedSet {
	set := &AnalyzedSet{
		Inputs: inputs,
		ByName: make(map[string][]*Input),
	}

	for _, in := range inputs {
		if in.Schema.Name != "" {
			set.ByName[in.Schema.Name] = append(set.ByName[in.Schema.Name], in)
		}
	}

	for _, rule := range a.rules {
		rule.Run(set)
	}

	slices.SortStableFunc(set.Diagnostics, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Path, y.Path),
			cmp.Compare(x.Line, y.Line),
			cmp.Compare(x.Code, y.Code),
		)
	})

	return set
}
