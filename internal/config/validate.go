// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var defaultSchema []byte

// ValidateWithCue validates a YAML configuration file using a CUE schema
// file. An empty cueFile selects the built-in schema.
func ValidateWithCue(configFile, cueFile string) error {
	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	schemaBytes, name := defaultSchema, "schema.cue"
	if cueFile != "" {
		schemaBytes, err = os.ReadFile(cueFile)
		if err != nil {
			return fmt.Errorf("cannot read CUE schema: %w", err)
		}
		name = cueFile
	}
	return ValidateBytes(yamlBytes, schemaBytes, name)
}

// ValidateBytes checks YAML bytes against the #Config definition of a CUE
// schema.
func ValidateBytes(yamlBytes, schemaBytes []byte, schemaName string) error {
	if len(yamlBytes) == 0 {
		return nil
	}
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaBytes, cue.Filename(schemaName))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema %s has no #Config definition", schemaName)
	}
	if err := cueyaml.Validate(yamlBytes, def); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
