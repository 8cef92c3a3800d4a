package emitters

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rlch/icetype"
)

// JSONName is the registered name of the JSON emitter.
const JSONName = "json"

func init() {
	icetype.RegisterEmitter(JSONName, func(cfg icetype.EmitterConfig) (icetype.Emitter, error) {
		return &JSONEmitter{cfg: cfg}, nil
	})
}

// JSONEmitter writes schemas as a JSON array.
type JSONEmitter struct {
	cfg icetype.EmitterConfig
}

// Name returns "json".
func (e *JSONEmitter) Name() string { return JSONName }

// Emit writes one JSON array holding every schema, followed by a newline.
func (e *JSONEmitter) Emit(w io.Writer, schemas []*icetype.IceTypeSchema) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent(e.cfg, 2)))

	return enc.Encode(newViews(schemas, e.cfg))
}
