package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jqcty/internal/native"
)

// maxAliasDepth bounds alias expansion so self-referencing anchors fail
// instead of recursing forever.
const maxAliasDepth = 64

// ErrExcessiveAliasing is returned when alias expansion dominates a
// document, as in the billion laughs attack.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

func decodeYAML(data []byte) (native.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return native.Null{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return nil, errors.New("parse yaml: expected a single document")
	}

	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a parsed YAML node into a native value. Mapping
// order is kept, aliases are expanded and merge keys (<<) are applied.
// Expansion is budgeted the way yaml.v3 budgets its own decoder.
func FromYAMLNode(node *yaml.Node) (native.Value, error) {
	var w yamlWalker
	return w.value(node)
}

// yamlWalker counts visited nodes and the share reached through aliases.
type yamlWalker struct {
	nodes      int
	aliased    int
	aliasDepth int
}

// visit accounts for one node and fails once aliased nodes exceed the
// allowed share of the document.
func (w *yamlWalker) visit(node *yaml.Node) error {
	w.nodes++
	if w.aliasDepth > 0 {
		w.aliased++
	}
	if w.aliased > 100 && w.nodes > 1000 &&
		float64(w.aliased)/float64(w.nodes) > allowedAliasRatio(w.nodes) {
		return fmt.Errorf("yaml line %d: %w", node.Line, ErrExcessiveAliasing)
	}
	return nil
}

// allowedAliasRatio mirrors yaml.v3: 99% aliasing for small documents,
// tightening linearly to 10% at four million nodes.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= 400_000:
		return 0.99
	case nodes >= 4_000_000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(nodes-400_000)/3_600_000)
	}
}

func (w *yamlWalker) alias(node *yaml.Node) (*yaml.Node, func(), error) {
	if w.aliasDepth >= maxAliasDepth {
		return nil, nil, fmt.Errorf("yaml line %d: aliases nested too deeply", node.Line)
	}
	w.aliasDepth++
	return node.Alias, func() { w.aliasDepth-- }, nil
}

func (w *yamlWalker) value(node *yaml.Node) (native.Value, error) {
	if err := w.visit(node); err != nil {
		return nil, err
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return native.Null{}, nil
		}
		return w.value(node.Content[0])
	case yaml.AliasNode:
		target, done, err := w.alias(node)
		if err != nil {
			return nil, err
		}
		defer done()
		return w.value(target)
	case yaml.SequenceNode:
		list := make(native.List, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := w.value(child)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		entries, err := w.entries(node)
		if err != nil {
			return nil, err
		}
		return native.NewMap(entries...), nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("yaml line %d: unsupported node kind %d", node.Line, node.Kind)
	}
}

func (w *yamlWalker) entries(node *yaml.Node) ([]native.Entry, error) {
	var merged, own []native.Entry
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if key.ShortTag() == "!!merge" {
			entries, err := w.merge(value)
			if err != nil {
				return nil, err
			}
			merged = append(merged, entries...)
			continue
		}

		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("yaml line %d: mapping keys must be scalars", key.Line)
		}
		v, err := w.value(value)
		if err != nil {
			return nil, err
		}
		own = append(own, native.E(key.Value, v))
	}
	// explicit keys override merged ones
	return append(merged, own...), nil
}

// merge resolves the value of a << key. In a sequence of mappings the
// earlier mapping wins on conflicting keys.
func (w *yamlWalker) merge(node *yaml.Node) ([]native.Entry, error) {
	if err := w.visit(node); err != nil {
		return nil, err
	}

	switch node.Kind {
	case yaml.AliasNode:
		target, done, err := w.alias(node)
		if err != nil {
			return nil, err
		}
		defer done()
		return w.merge(target)
	case yaml.MappingNode:
		return w.entries(node)
	case yaml.SequenceNode:
		var out []native.Entry
		seen := make(map[string]bool)
		for _, child := range node.Content {
			if child.Kind == yaml.SequenceNode {
				return nil, fmt.Errorf("yaml line %d: merge value must be a mapping", child.Line)
			}
			entries, err := w.merge(child)
			if err != nil {
				return nil, err
			}
			for _, e := range native.NewMap(entries...).Entries() {
				if !seen[e.Key] {
					seen[e.Key] = true
					out = append(out, e)
				}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("yaml line %d: merge value must be a mapping", node.Line)
	}
}

func yamlScalar(node *yaml.Node) (native.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return native.Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("yaml line %d: %w", node.Line, err)
		}
		return native.Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return native.Int(i), nil
		}
		text := strings.ReplaceAll(node.Value, "_", "")
		if d, err := native.NewDecimal(text); err == nil && d.IsIntegral() {
			return d, nil
		}
		return nil, fmt.Errorf("yaml line %d: invalid integer %q", node.Line, node.Value)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			parsed, perr := strconv.ParseFloat(node.Value, 64)
			if perr != nil {
				return nil, fmt.Errorf("yaml line %d: %w", node.Line, err)
			}
			f = parsed
		}
		return native.Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text
		return native.String(node.Value), nil
	}
}
