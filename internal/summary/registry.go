package summary

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrUnknownKind = errors.New("unknown record kind")

// DecodeFunc builds a record from one YAML mapping.
type DecodeFunc func(node *yaml.Node) (Summarizable, error)

// Registry maps record kind names to decoders.
type Registry struct {
	kinds map[string]DecodeFunc
}

// NewRegistry returns a registry that knows article, short_post and page.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]DecodeFunc)}
	r.Register("article", decodeAs[Article])
	r.Register("short_post", decodeAs[ShortPost])
	r.Register("page", decodeAs[Page])
	return r
}

// Register adds or replaces the decoder for kind.
func (r *Registry) Register(kind string, fn DecodeFunc) {
	r.kinds[kind] = fn
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode parses a YAML (or JSON) sequence of records. Each element carries
// a "kind" key naming its decoder.
func (r *Registry) Decode(data []byte) ([]Summarizable, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	records := make([]Summarizable, 0, len(nodes))
	for i := range nodes {
		var head struct {
			Kind string `yaml:"kind"`
		}
		if err := nodes[i].Decode(&head); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		fn, ok := r.kinds[head.Kind]
		if !ok {
			return nil, fmt.Errorf("record %d: %w: %q", i, ErrUnknownKind, head.Kind)
		}
		rec, err := fn(&nodes[i])
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, head.Kind, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeAs[T Summarizable](node *yaml.Node) (Summarizable, error) {
	var v T
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
