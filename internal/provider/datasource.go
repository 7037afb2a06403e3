package provider

import (
	"context"
	"errors"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// ReadFunc produces the full state from a configuration conformed to the
// schema's config type.
type ReadFunc func(ctx context.Context, config dynamic.Value) (dynamic.Value, error)

// DataSource is a named component that reads state from configuration.
type DataSource struct {
	Name        string
	Description string
	Schema      Schema
	Read        ReadFunc
}

// Validate checks that d can be registered.
func (d *DataSource) Validate() error {
	if d.Name == "" {
		return errors.New("data source name is required")
	}
	if d.Read == nil {
		return errors.New("data source read function is required")
	}
	return nil
}

// ReadState validates config, runs Read and checks the returned state
// against the schema.
func (d *DataSource) ReadState(ctx context.Context, config native.Value) (dynamic.Value, error) {
	m, ok := config.(native.Map)
	if !ok {
		kind := "nil"
		if config != nil {
			kind = config.Kind().String()
		}
		err := invalidArguments("configuration must be an object, got %s", kind)
		return dynamic.Value{}, newError(KindDataSource, d.Name, err, "Configuration is missing for %s data source.", d.Name)
	}

	for _, key := range m.Keys() {
		if a, ok := d.Schema.Attribute(key); ok && a.Computed {
			err := invalidArguments("attribute %q is computed and cannot be configured", key)
			return dynamic.Value{}, newError(KindDataSource, d.Name, err, "%s: %v", d.Name, err)
		}
	}

	typed, err := dynamic.Conform(m, d.Schema.ConfigType())
	if err != nil {
		wrapped := invalidArguments("%v", err)
		return dynamic.Value{}, newError(KindDataSource, d.Name, wrapped, "%s: %v", d.Name, wrapped)
	}

	for _, a := range d.Schema.Attributes {
		if !a.Required {
			continue
		}
		if v, _ := typed.Attribute(a.Name); v.IsNull() {
			err := invalidArguments("missing required attribute %q", a.Name)
			return dynamic.Value{}, newError(KindDataSource, d.Name, err, "%s: %v", d.Name, err)
		}
	}

	state, err := d.Read(ctx, typed)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return dynamic.Value{}, err
		}
		return dynamic.Value{}, newError(KindDataSource, d.Name, err, "%s", err.Error())
	}

	conformed, err := dynamic.Conform(dynamic.ToNative(state), d.Schema.StateType())
	if err != nil {
		return dynamic.Value{}, newError(KindDataSource, d.Name, err, "%s: state: %v", d.Name, err)
	}
	return conformed, nil
}
