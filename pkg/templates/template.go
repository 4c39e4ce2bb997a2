// Package templates holds the named SQL templates, their parameter metadata,
// and the registry that resolves template IDs for the query engine.
package templates

// ParamType is a declared parameter type in template metadata.
type ParamType string

const (
	TypeInteger ParamType = "integer"
	TypeDate    ParamType = "date"
	TypeBoolean ParamType = "boolean"
	TypeString  ParamType = "string"
)

// Metadata describes the parameters a template accepts. Parameters not listed
// here pass through validation unchecked.
type Metadata struct {
	Description string               `yaml:"description"`
	Required    []string             `yaml:"required_params"`
	Optional    []string             `yaml:"optional_params"`
	Types       map[string]ParamType `yaml:"param_types"`
}

// Template pairs raw SQL template text with its metadata. Text contains
// literal SQL interleaved with {% if %} conditional blocks and :name bind
// markers.
type Template struct {
	ID       string
	Text     string
	Metadata *Metadata
}
