package world

import (
	"encoding/json"
	"fmt"
)

// Document is the JSON form of a world file: a forest of named node trees.
type Document struct {
	Name  string        `json:"name"`
	Nodes []NodeDoc     `json:"nodes"`
	Meta  meta          `json:"meta,omitempty"`
}

type meta struct {
	Description string `json:"description,omitempty"`
}

// NodeDoc is the JSON form of a single node. Relationship targets and the
// node's own path use the same /Root/Child path syntax as the store.
type NodeDoc struct {
	Name     string              `json:"name"`
	Kind     string              `json:"kind"`
	Props    map[string]any      `json:"props,omitempty"`
	Rels     map[string][]string `json:"rels,omitempty"`
	Variants []VariantSetDoc     `json:"variants,omitempty"`
	Children []NodeDoc           `json:"children,omitempty"`
}

// VariantSetDoc is the JSON form of a variant axis.
type VariantSetDoc struct {
	Axis     string       `json:"axis"`
	Variants []VariantDoc `json:"options"`
}

// VariantDoc is one named override set.
type VariantDoc struct {
	Name      string         `json:"name"`
	Overrides map[string]any `json:"overrides"`
}

// FromJSON decodes a world document and builds an indexed MemoryStore.
func FromJSON(data []byte) (*MemoryStore, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse world document: %w", err)
	}
	return FromDocument(&doc)
}

// FromDocument builds an indexed MemoryStore from a decoded document.
func FromDocument(doc *Document) (*MemoryStore, error) {
	store := NewMemoryStore()
	for i := range doc.Nodes {
		root, err := buildNode(&doc.Nodes[i], "")
		if err != nil {
			return nil, err
		}
		store.AddTree(root)
	}
	return store, nil
}

func buildNode(d *NodeDoc, parentPath string) (*Node, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("node under %q has no name", parentPath)
	}
	n := &Node{
		Path: parentPath + "/" + d.Name,
		Kind: d.Kind,
		Rels: d.Rels,
	}
	if n.Kind == "" {
		n.Kind = KindNode
	}
	if len(d.Props) > 0 {
		n.Props = make(map[string]any, len(d.Props))
		for k, v := range d.Props {
			n.Props[k] = normalizeValue(v)
		}
	}
	for i := range d.Variants {
		vd := &d.Variants[i]
		vs := &VariantSet{Axis: vd.Axis}
		for j := range vd.Variants {
			ov := make(map[string]any, len(vd.Variants[j].Overrides))
			for k, v := range vd.Variants[j].Overrides {
				ov[k] = normalizeValue(v)
			}
			vs.Variants = append(vs.Variants, Variant{Name: vd.Variants[j].Name, Overrides: ov})
		}
		n.Variants = append(n.Variants, vs)
	}
	for i := range d.Children {
		child, err := buildNode(&d.Children[i], n.Path)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// normalizeValue converts JSON-decoded values into the store's value set.
// Three-element numeric arrays become [3]float64 vectors.
func normalizeValue(v any) any {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return v
	}
	var vec [3]float64
	for i, elem := range arr {
		f, ok := elem.(float64)
		if !ok {
			return v
		}
		vec[i] = f
	}
	return vec
}
