// Package content loads item, NPC and mob templates from data files into
// the repository and reads them back as an in-memory catalog.
package content

import (
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// SchemaName identifies one of the embedded JSON Schemas.
type SchemaName string

const (
	SchemaItem  SchemaName = "item"
	SchemaNPC   SchemaName = "npc"
	SchemaMob   SchemaName = "mob"
	SchemaWorld SchemaName = "world"
)

var (
	schemasOnce sync.Once
	schemas     map[SchemaName]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	schemas = make(map[SchemaName]*jsonschema.Schema)
	for _, name := range []SchemaName{SchemaItem, SchemaNPC, SchemaMob, SchemaWorld} {
		file := string(name) + ".schema.json"
		raw, err := schemaFS.ReadFile("schemas/" + file)
		if err != nil {
			schemasErr = fmt.Errorf("failed to read schema %s: %w", file, err)
			return
		}
		s, err := jsonschema.CompileString(file, string(raw))
		if err != nil {
			schemasErr = fmt.Errorf("failed to compile schema %s: %w", file, err)
			return
		}
		schemas[name] = s
	}
}

// Validate checks a generic JSON value (as produced by json.Unmarshal into
// an any) against the named schema.
func Validate(name SchemaName, v any) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	s, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	return s.Validate(v)
}
