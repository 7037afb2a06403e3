package provider

import (
	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// Parameter declares one positional function argument.
//
// Check, when set, runs on the raw argument before it is conformed to Type.
// Its error is returned as-is, so a parameter can report a domain error in
// place of a type mismatch.
type Parameter struct {
	Name        string
	Description string
	Type        dynamic.Type
	Check       func(native.Value) error
}

// Attribute declares one data source attribute.
//
// Required attributes must be set and non-null in the configuration.
// Computed attributes are produced by Read and may not be configured.
type Attribute struct {
	Name        string
	Description string
	Type        dynamic.Type
	Required    bool
	Computed    bool
}

// Schema describes the attributes of a data source.
type Schema struct {
	Attributes []Attribute
}

// StateType is the object type of the full state, all attributes included.
func (s Schema) StateType() dynamic.Type {
	attrs := make([]dynamic.Attribute, len(s.Attributes))
	for i, a := range s.Attributes {
		attrs[i] = dynamic.Attribute{Name: a.Name, Type: a.Type}
	}
	return dynamic.Object(attrs...)
}

// ConfigType is the object type of the configuration: every attribute that
// is not computed.
func (s Schema) ConfigType() dynamic.Type {
	attrs := make([]dynamic.Attribute, 0, len(s.Attributes))
	for _, a := range s.Attributes {
		if !a.Computed {
			attrs = append(attrs, dynamic.Attribute{Name: a.Name, Type: a.Type})
		}
	}
	return dynamic.Object(attrs...)
}

// Attribute returns the named attribute.
func (s Schema) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
