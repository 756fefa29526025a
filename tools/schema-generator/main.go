package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/mattsolo1/grove-try/cmd"
	"github.com/mattsolo1/grove-try/pkg/jobs"
)

func writeSchema(schema *jsonschema.Schema, path string) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated schema at %s", path)
}

func main() {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&cmd.TryConfig{})
	schema.Title = "Grove Try Configuration"
	schema.Description = "Schema for the 'try' extension in grove.yml."
	// Grove configs should not require any fields.
	schema.Required = nil
	writeSchema(schema, "try.schema.json")

	// Job files are plain JSON as often as YAML, so reflect on json tags.
	jr := &jsonschema.Reflector{ExpandedStruct: true}
	jobSchema := jr.Reflect(&jobs.File{})
	jobSchema.Title = "Grove Try Job Description"
	jobSchema.Description = "Schema for job description files read by trychooser."
	writeSchema(jobSchema, "try-jobs.schema.json")
}
