package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// Registry holds functions and data sources by name.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	functions   map[string]*Function
	dataSources map[string]*DataSource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions:   make(map[string]*Function),
		dataSources: make(map[string]*DataSource),
	}
}

// RegisterFunction adds f. Returns an error if the name is taken.
func (r *Registry) RegisterFunction(f *Function) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid function: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[f.Name]; exists {
		return fmt.Errorf("%w: function %s", ErrAlreadyRegistered, f.Name)
	}
	r.functions[f.Name] = f
	return nil
}

// RegisterDataSource adds d. Returns an error if the name is taken.
func (r *Registry) RegisterDataSource(d *DataSource) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid data source: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dataSources[d.Name]; exists {
		return fmt.Errorf("%w: data source %s", ErrAlreadyRegistered, d.Name)
	}
	r.dataSources[d.Name] = d
	return nil
}

// Function returns the named function.
func (r *Registry) Function(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.functions[name]
	return f, ok
}

// DataSource returns the named data source.
func (r *Registry) DataSource(name string) (*DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dataSources[name]
	return d, ok
}

// Functions returns all functions sorted by name.
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Function, 0, len(r.functions))
	for _, f := range r.functions {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *Function) int { return compareNames(a.Name, b.Name) })
	return out
}

// DataSources returns all data sources sorted by name.
func (r *Registry) DataSources() []*DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*DataSource, 0, len(r.dataSources))
	for _, d := range r.dataSources {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *DataSource) int { return compareNames(a.Name, b.Name) })
	return out
}

// CallFunction looks up and calls the named function.
func (r *Registry) CallFunction(ctx context.Context, name string, args []native.Value) (dynamic.Value, error) {
	f, ok := r.Function(name)
	if !ok {
		return dynamic.Value{}, fmt.Errorf("%w: function %s", ErrNotFound, name)
	}
	return f.Call(ctx, args)
}

// ReadDataSource looks up and reads the named data source.
func (r *Registry) ReadDataSource(ctx context.Context, name string, config native.Value) (dynamic.Value, error) {
	d, ok := r.DataSource(name)
	if !ok {
		return dynamic.Value{}, fmt.Errorf("%w: data source %s", ErrNotFound, name)
	}
	return d.ReadState(ctx, config)
}

func compareNames(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
