package icetype

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// Emitter renders assembled schemas in an output format.
type Emitter interface {
	// Name returns the emitter identifier (e.g., "json", "yaml").
	Name() string

	// Emit writes the schemas to w.
	Emit(w io.Writer, schemas []*IceTypeSchema) error
}

// EmitterFactory creates an Emitter from its options.
type EmitterFactory func(cfg EmitterConfig) (Emitter, error)

// EmitterConfig holds output settings shared by emitters.
type EmitterConfig struct {
	// Indent is the number of spaces per nesting level. Zero picks the
	// emitter's default.
	Indent int

	// OmitTimestamps drops createdAt/updatedAt, which keeps output stable.
	OmitTimestamps bool
}

var emitters = make(map[string]EmitterFactory)

// RegisterEmitter registers an emitter factory by name.
func RegisterEmitter(name string, factory EmitterFactory) {
	emitters[name] = factory
}

// NewEmitter creates an emitter by name.
func NewEmitter(name string, cfg EmitterConfig) (Emitter, error) {
	factory, ok := emitters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmitter, name)
	}

	return factory(cfg)
}

// RegisteredEmitters returns the names of all registered emitters, sorted.
func RegisteredEmitters() []string {
	return slices.Sorted(maps.Keys(emitters))
}
