package model

// ConfigField describes one configuration field for an input type.
type ConfigField struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number", "bool", "object"
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// InputTypeInfo describes an input type and the configuration it expects.
// Served by GET /inputs/types/:type.
type InputTypeInfo struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Fields      []ConfigField `json:"fields"`
}

// Field returns the named field. ok is false if the schema has no such field.
func (i InputTypeInfo) Field(name string) (f ConfigField, ok bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ConfigField{}, false
}
