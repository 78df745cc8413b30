package world

import "strings"

// Node kinds used by the engine. Hosts may introduce additional kinds;
// the evaluators ignore kinds they do not know.
const (
	KindNode         = "node"
	KindResponse     = "response"
	KindResponses    = "responses"
	KindAction       = "action"
	KindCondition    = "condition"
	KindState        = "state"
	KindTransition   = "transition"
	KindRequirement  = "requirement"
	KindStateMachine = "stateMachine"
	KindDialogTree   = "dialogTree"
	KindSelector     = "selector"
	KindSequence     = "sequence"
	KindEntity       = "entity"
)

// Node is a single element of the hierarchical world store: a dialog step,
// a behavior-tree element, a state, a transition, a condition or an action.
// Property values are string, bool, int64, float64 or [3]float64.
type Node struct {
	Path     string
	Kind     string
	Props    map[string]any
	Rels     map[string][]string
	Children []*Node
	Variants []*VariantSet
}

// Name returns the last segment of the node's path.
func (n *Node) Name() string {
	if i := strings.LastIndexByte(n.Path, '/'); i >= 0 {
		return n.Path[i+1:]
	}
	return n.Path
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns direct children with the given kind, in declaration order.
func (n *Node) ChildrenOfKind(kind string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// PropertyNames returns the names of every property the node can resolve:
// its base properties plus overrides introduced by currently selected
// variants. Base names come first, override-only names after, each once.
func (n *Node) PropertyNames() []string {
	seen := make(map[string]bool, len(n.Props))
	out := make([]string, 0, len(n.Props))
	for name := range n.Props {
		seen[name] = true
		out = append(out, name)
	}
	for _, vs := range n.Variants {
		v := vs.selected()
		if v == nil {
			continue
		}
		for name := range v.Overrides {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// VariantSet is a named axis of mutually exclusive property override sets.
// At most one variant per axis is selected at a time; an empty Selection
// means the node's base property values apply.
type VariantSet struct {
	Axis      string
	Variants  []Variant
	Selection string
}

// Variant is one named override set within a variant axis.
type Variant struct {
	Name      string
	Overrides map[string]any
}

// Has reports whether the set declares a variant with the given name.
func (vs *VariantSet) Has(name string) bool {
	for _, v := range vs.Variants {
		if v.Name == name {
			return true
		}
	}
	return false
}

func (vs *VariantSet) selected() *Variant {
	if vs.Selection == "" {
		return nil
	}
	for i := range vs.Variants {
		if vs.Variants[i].Name == vs.Selection {
			return &vs.Variants[i]
		}
	}
	return nil
}
