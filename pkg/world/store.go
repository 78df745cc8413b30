package world

import (
	"sort"
	"strings"
)

// Store is the narrow interface the evaluators consume. The tree itself is
// owned by the host; the engine holds only node paths and reads through
// this interface. SetVariantSelection is the single write, used during
// dialog variant resolution.
type Store interface {
	GetNode(path string) (*Node, bool)
	Children(n *Node) []*Node
	Property(n *Node, name string) (any, bool)
	RelationshipTargets(n *Node, name string) []string
	SetVariantSelection(n *Node, axis, variant string) bool
}

// MemoryStore is an in-memory Store over a forest of node trees,
// indexed by path.
type MemoryStore struct {
	nodes map[string]*Node
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[string]*Node)}
}

// AddTree indexes a root node and all of its descendants.
// Paths must already be set on every node.
func (s *MemoryStore) AddTree(root *Node) {
	s.index(root)
}

func (s *MemoryStore) index(n *Node) {
	s.nodes[n.Path] = n
	for _, c := range n.Children {
		s.index(c)
	}
}

// GetNode returns the node at path.
func (s *MemoryStore) GetNode(path string) (*Node, bool) {
	n, ok := s.nodes[path]
	return n, ok
}

// Children returns the direct children of n in declaration order.
func (s *MemoryStore) Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

// Property returns the effective value of a property: the base value,
// overridden by the selected variant of each axis. Axes are applied in
// declaration order, so when two selected variants override the same
// property the later-declared axis wins.
func (s *MemoryStore) Property(n *Node, name string) (any, bool) {
	if n == nil {
		return nil, false
	}
	val, ok := n.Props[name]
	for _, vs := range n.Variants {
		if v := vs.selected(); v != nil {
			if ov, has := v.Overrides[name]; has {
				val, ok = ov, true
			}
		}
	}
	return val, ok
}

// RelationshipTargets returns the target paths of a named relationship,
// in declaration order. Missing relationships yield nil.
func (s *MemoryStore) RelationshipTargets(n *Node, name string) []string {
	if n == nil {
		return nil
	}
	return n.Rels[name]
}

// SetVariantSelection selects a named variant on an axis of n. It returns
// false when the axis or the variant does not exist, leaving any current
// selection in place.
func (s *MemoryStore) SetVariantSelection(n *Node, axis, variant string) bool {
	if n == nil {
		return false
	}
	for _, vs := range n.Variants {
		if vs.Axis == axis {
			if !vs.Has(variant) {
				return false
			}
			vs.Selection = variant
			return true
		}
	}
	return false
}

// Paths returns all indexed node paths, sorted. Used by validation tooling.
func (s *MemoryStore) Paths() []string {
	out := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Typed property accessors. All of them return the zero value and false on
// a missing property or a type mismatch; the evaluators treat that as the
// condition failing or the parameter being absent, never as a fatal error.

// StringProp reads a string property.
func StringProp(s Store, n *Node, name string) (string, bool) {
	v, ok := s.Property(n, name)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// StringPropDefault reads a string property, falling back to def.
func StringPropDefault(s Store, n *Node, name, def string) string {
	if v, ok := StringProp(s, n, name); ok && v != "" {
		return v
	}
	return def
}

// BoolProp reads a bool property.
func BoolProp(s Store, n *Node, name string) (bool, bool) {
	v, ok := s.Property(n, name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// IntProp reads an integer property. JSON-decoded worlds carry numbers as
// float64, so integral floats are accepted.
func IntProp(s Store, n *Node, name string) (int, bool) {
	v, ok := s.Property(n, name)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

// FloatProp reads a float property, accepting integer values.
func FloatProp(s Store, n *Node, name string) (float64, bool) {
	v, ok := s.Property(n, name)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// Vec3Prop reads a 3-component vector property.
func Vec3Prop(s Store, n *Node, name string) ([3]float64, bool) {
	v, ok := s.Property(n, name)
	if !ok {
		return [3]float64{}, false
	}
	vec, ok := v.([3]float64)
	return vec, ok
}

// ParentPath returns the path of a node's parent, or "" for a root.
func ParentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return ""
}
