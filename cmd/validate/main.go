package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/interact-engine/internal/config"
	"github.com/jwebster45206/interact-engine/internal/logger"
	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/condition"
	"github.com/jwebster45206/interact-engine/pkg/dialog"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.json>\n", os.Args[0])
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.Setup(cfg)

	filename := os.Args[1]
	log.Debug("validating world file", "file", filename)
	validator := NewWorldValidator()

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World file is valid!")
}

type WorldValidator struct {
	conditionKinds map[string]bool
	actionKinds    map[string]bool
	errors         []string
}

func NewWorldValidator() *WorldValidator {
	v := &WorldValidator{
		conditionKinds: make(map[string]bool),
		actionKinds:    make(map[string]bool),
	}
	for _, k := range condition.NewEvaluator().Kinds() {
		v.conditionKinds[k] = true
	}
	for _, k := range action.NewDispatcher().Kinds() {
		v.actionKinds[k] = true
	}
	return v
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("world file must have .json extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var doc world.Document
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	store, err := world.FromDocument(&doc)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.errors = nil
	v.validateStore(store)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *WorldValidator) validateStore(store *world.MemoryStore) {
	for _, path := range store.Paths() {
		n, ok := store.GetNode(path)
		if !ok {
			continue
		}
		switch n.Kind {
		case world.KindDialogTree:
			v.validateDialogTree(store, n)
		case world.KindStateMachine:
			v.validateStateMachine(store, n)
		case world.KindSelector, world.KindSequence:
			if len(n.Children) == 0 {
				v.addError(fmt.Sprintf("%s %s has no children", n.Kind, n.Path))
			}
		case world.KindCondition:
			v.validateTyped(store, n, v.conditionKinds, "condition")
		case world.KindAction:
			v.validateTyped(store, n, v.actionKinds, "action")
		}
	}
}

func (v *WorldValidator) validateDialogTree(store *world.MemoryStore, tree *world.Node) {
	rootName := world.StringPropDefault(store, tree, "root", dialog.DefaultRoot)
	if tree.Child(rootName) == nil {
		v.addError(fmt.Sprintf("dialog tree %s has no root node %q", tree.Path, rootName))
	}
	for _, node := range tree.Children {
		for _, container := range node.ChildrenOfKind(world.KindResponses) {
			for _, r := range container.ChildrenOfKind(world.KindResponse) {
				targets := store.RelationshipTargets(r, "next")
				if len(targets) == 0 {
					v.addError(fmt.Sprintf("response %s has no next relationship", r.Path))
					continue
				}
				for _, target := range targets {
					if _, ok := store.GetNode(target); !ok {
						v.addError(fmt.Sprintf("response %s targets missing node %s", r.Path, target))
					}
				}
			}
		}
	}
}

func (v *WorldValidator) validateStateMachine(store *world.MemoryStore, machine *world.Node) {
	states := make(map[string]bool)
	for _, s := range machine.ChildrenOfKind(world.KindState) {
		states[s.Name()] = true
	}
	if len(states) == 0 {
		v.addError(fmt.Sprintf("state machine %s has no states", machine.Path))
		return
	}

	current, ok := world.StringProp(store, machine, "current")
	if !ok {
		v.addError(fmt.Sprintf("state machine %s has no current state", machine.Path))
	} else if !states[current] {
		v.addError(fmt.Sprintf("state machine %s current state %q does not exist", machine.Path, current))
	}

	for _, s := range machine.ChildrenOfKind(world.KindState) {
		seen := make(map[string]bool)
		for _, t := range s.ChildrenOfKind(world.KindTransition) {
			trigger, ok := world.StringProp(store, t, "trigger")
			if !ok || trigger == "" {
				v.addError(fmt.Sprintf("transition %s has no trigger", t.Path))
				continue
			}
			if seen[trigger] {
				v.addError(fmt.Sprintf("state %s declares trigger %q more than once; only the first transition fires", s.Path, trigger))
			}
			seen[trigger] = true

			targets := store.RelationshipTargets(t, "target")
			if len(targets) == 0 {
				v.addError(fmt.Sprintf("transition %s has no target relationship", t.Path))
				continue
			}
			target := targets[0]
			if !strings.HasPrefix(target, machine.Path+"/") || !states[lastSegment(target)] {
				v.addError(fmt.Sprintf("transition %s targets %s, which is not a state of %s", t.Path, target, machine.Path))
			}
		}
		if req := s.Child("Requirement"); req != nil {
			v.addError(fmt.Sprintf("state %s carries a Requirement child; requirements belong on transitions", s.Path))
		}
		for _, t := range s.ChildrenOfKind(world.KindTransition) {
			if req := t.Child("Requirement"); req != nil {
				if id, ok := world.StringProp(store, req, "itemId"); !ok || id == "" {
					v.addError(fmt.Sprintf("requirement %s has no itemId", req.Path))
				}
			}
		}
	}
}

func (v *WorldValidator) validateTyped(store *world.MemoryStore, n *world.Node, known map[string]bool, label string) {
	kind, ok := world.StringProp(store, n, "type")
	if !ok || kind == "" {
		v.addError(fmt.Sprintf("%s %s has no type property", label, n.Path))
		return
	}
	if !known[kind] {
		v.addError(fmt.Sprintf("%s %s has unknown type %q", label, n.Path, kind))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
