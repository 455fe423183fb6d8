// Package schema provides JSON Schema generation for configuration records.
package schema

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// Output is a generated schema with its metadata.
type Output struct {
	// Name is the short identifier for this schema
	Name string
	// Filename is the output filename
	Filename string
	// Content is the generated JSON schema bytes
	Content []byte
}

// Type identifies the schema to generate.
type Type string

const (
	// TypeRecord generates the schema for a persisted configuration record.
	TypeRecord Type = "record"
	// TypeDescriptor generates the schema for a single service descriptor.
	TypeDescriptor Type = "descriptor"
)

// commentPath is the source directory whose Go doc comments become JSON
// Schema descriptions.
const commentPath = "./internal/configtypes"

// GenerateForType generates the JSON Schema for the given type, loading Go doc
// comments from the configtypes package as property descriptions.
func GenerateForType(modulePath string, schemaType Type) (*Output, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	if err := reflector.AddGoComments(modulePath, commentPath); err != nil {
		return nil, errors.Wrapf(err, "loading Go comments from %s", commentPath)
	}

	var (
		schema *jsonschema.Schema
		output Output
	)

	switch schemaType {
	case TypeRecord:
		schema = reflector.Reflect(&configtypes.ConfigurationRecord{})
		schema.ID = "https://raw.githubusercontent.com/smykla-skalski/svcsync/main/schemas/record.schema.json"
		schema.Title = "Service Configuration Record"
		schema.Description = "Full set of service descriptors plus versioning and metadata, as persisted by svcsync."

		output.Name = "record"
		output.Filename = "record.schema.json"

	case TypeDescriptor:
		schema = reflector.Reflect(&configtypes.ServiceDescriptor{})
		schema.ID = "https://raw.githubusercontent.com/smykla-skalski/svcsync/main/schemas/descriptor.schema.json"
		schema.Title = "Service Descriptor"
		schema.Description = "A single launchable process configuration: command, arguments, environment, enablement."

		output.Name = "descriptor"
		output.Filename = "descriptor.schema.json"

	default:
		return nil, errors.Newf("unknown schema type: %s", schemaType)
	}

	content, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema")
	}

	output.Content = append(content, '\n')

	return &output, nil
}

// GenerateAll generates every schema.
func GenerateAll(modulePath string) ([]*Output, error) {
	var outputs []*Output

	for _, schemaType := range []Type{TypeRecord, TypeDescriptor} {
		output, err := GenerateForType(modulePath, schemaType)
		if err != nil {
			return nil, errors.Wrapf(err, "generating %s schema", schemaType)
		}

		outputs = append(outputs, output)
	}

	return outputs, nil
}
