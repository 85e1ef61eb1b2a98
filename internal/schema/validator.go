// Package schema validates the shape of JSON documents consumed from upstream
// services and from the checker against embedded CUE definitions.
package schema

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Kind names a definition inside one of the embedded schema files.
type Kind struct {
	File       string
	Definition string
}

// Known document kinds.
var (
	PylanceRelease = Kind{File: "pylance", Definition: "#PylanceRelease"}
	Package        = Kind{File: "package", Definition: "#Package"}
	Report         = Kind{File: "report", Definition: "#Report"}
)

func (k Kind) String() string {
	return k.File + "." + k.Definition
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a Validator with every embedded schema compiled.
func NewValidator() (*Validator, error) {
	v := &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
	if err := v.loadSchemas(); err != nil {
		return nil, err
	}
	return v, nil
}

// loadSchemas loads all CUE schema files from the embedded filesystem
func (v *Validator) loadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return fmt.Errorf("could not read schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("could not compile schema %s: %w", entry.Name(), instErr)
		}

		// pylance.cue -> pylance
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}

	return nil
}

// Validate checks that the JSON document data conforms to the definition kind.
// name identifies the document in error messages.
func (v *Validator) Validate(kind Kind, name string, data []byte) error {
	schema, ok := v.schemas[kind.File]
	if !ok {
		return fmt.Errorf("schema %s not loaded", kind.File)
	}

	def := schema.LookupPath(cue.ParsePath(kind.Definition))
	if !def.Exists() {
		return fmt.Errorf("schema %s has no definition %s", kind.File, kind.Definition)
	}

	expr, err := cuejson.Extract(name, data)
	if err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", name, err)
	}

	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%s could not be loaded: %w", name, err)
	}

	// Unify then require concreteness so missing required fields are reported
	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s does not match %s: %w", name, kind, err)
	}

	return nil
}
