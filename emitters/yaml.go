package emitters

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rlch/icetype"
)

// YAMLName is the registered name of the YAML emitter.
const YAMLName = "yaml"

func init() {
	icetype.RegisterEmitter(YAMLName, func(cfg icetype.EmitterConfig) (icetype.Emitter, error) {
		return &YAMLEmitter{cfg: cfg}, nil
	})
}

// YAMLEmitter writes schemas as a multi-document YAML stream, one document
// per schema.
type YAMLEmitter struct {
	cfg icetype.EmitterConfig
}

// Name returns "yaml".
func (e *YAMLEmitter) Name() string { return YAMLName }

// Emit writes the schemas.
func (e *YAMLEmitter) Emit(w io.Writer, schemas []*icetype.IceTypeSchema) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(indent(e.cfg, 2))

	for _, view := range newViews(schemas, e.cfg) {
		if err := enc.Encode(view); err != nil {
			return err
		}
	}

	return enc.Close()
}
