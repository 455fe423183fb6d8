package configtypes

import "github.com/invopop/jsonschema"

// JSONSchemaExtend adds example values to the ServiceDescriptor schema.
func (ServiceDescriptor) JSONSchemaExtend(schema *jsonschema.Schema) {
	if commandProp, ok := schema.Properties.Get("command"); ok {
		commandProp.Examples = []any{
			"npx",
			"/usr/local/bin/node",
		}
	}

	if argsProp, ok := schema.Properties.Get("args"); ok {
		argsProp.Examples = []any{
			[]string{"-y", "@example/server-filesystem"},
			[]string{"server.js", "--port", "8080"},
		}
	}
}

// JSONSchemaExtend adds example values to the ConfigurationRecord schema.
func (ConfigurationRecord) JSONSchemaExtend(schema *jsonschema.Schema) {
	if versionProp, ok := schema.Properties.Get("version"); ok {
		versionProp.Examples = []any{
			"1.0.0",
			"1.2.0",
		}
	}
}
