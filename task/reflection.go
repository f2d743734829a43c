package task

import "github.com/invopop/jsonschema"

type Satisfactory string

const (
	SatisfactoryYes Satisfactory = "yes"
	SatisfactoryNo  Satisfactory = "no"
)

// Reflection is the result of a self-critique pass over a prior output.
type Reflection struct {
	Reflection   string       `json:"reflection"`
	Satisfactory Satisfactory `json:"satisfactory" jsonschema:"enum=yes,enum=no"`
}

// ReflectionSchema returns the JSON schema handed to a model when
// requesting structured reflection output.
func ReflectionSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}

	return reflector.Reflect(&Reflection{})
}
