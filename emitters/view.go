// Package emitters registers the output formats of the icetype CLI.
//
// Importing the package for its side effects makes "json" and "yaml"
// available through icetype.NewEmitter.
package emitters

import (
	"time"

	"github.com/rlch/icetype"
)

// schemaView is the serialized shape of a schema. Timestamps are pointers so
// they can be omitted.
type schemaView struct {
	Name       string                                          `json:"name,omitempty" yaml:"name,omitempty"`
	Version    int                                             `json:"version" yaml:"version"`
	Fields     icetype.OrderedMap[*icetype.FieldDefinition]    `json:"fields" yaml:"fields"`
	Relations  icetype.OrderedMap[*icetype.RelationDefinition] `json:"relations" yaml:"relations"`
	Directives icetype.Directives                              `json:"directives" yaml:"directives"`
	CreatedAt  *time.Time                                      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt  *time.Time                                      `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func newViews(schemas []*icetype.IceTypeSchema, cfg icetype.EmitterConfig) []schemaView {
	views := make([]schemaView, len(schemas))

	for i, s := range schemas {
		views[i] = schemaView{
			Name:       s.Name,
			Version:    s.Version,
			Fields:     s.Fields,
			Relations:  s.Relations,
			Directives: s.Directives,
		}

		if !cfg.OmitTimestamps {
			views[i].CreatedAt = &s.CreatedAt
			views[i].UpdatedAt = &s.UpdatedAt
		}
	}

	return views
}

func indent(cfg icetype.EmitterConfig, fallback int) int {
	if cfg.Indent > 0 {
		return cfg.Indent
	}

	return fallback
}
