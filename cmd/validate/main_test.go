package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/interact-engine/pkg/world"
)

// validateJSON runs the structural checks against an in-memory world and
// returns the collected errors as one string for matching.
func validateJSON(t *testing.T, doc string) string {
	t.Helper()
	store, err := world.FromJSON([]byte(doc))
	require.NoError(t, err)
	v := NewWorldValidator()
	v.validateStore(store)
	return strings.Join(v.errors, "\n")
}

func TestValidate_SampleWorld(t *testing.T) {
	v := NewWorldValidator()
	err := v.validateFile(filepath.Join("..", "..", "data", "village.json"))
	assert.NoError(t, err)
}

func TestValidate_DanglingResponseTarget(t *testing.T) {
	errs := validateJSON(t, `{
		"name": "Broken Dialog",
		"nodes": [
			{
				"name": "Hermit",
				"kind": "dialogTree",
				"children": [
					{
						"name": "Greeting",
						"props": {"text": "Hello."},
						"children": [
							{
								"name": "Responses",
								"kind": "responses",
								"children": [
									{
										"name": "Gone",
										"kind": "response",
										"props": {"text": "Where does this go?"},
										"rels": {"next": ["/Hermit/Missing"]}
									},
									{
										"name": "Nowhere",
										"kind": "response",
										"props": {"text": "And this?"}
									}
								]
							}
						]
					}
				]
			}
		]
	}`)
	assert.Contains(t, errs, "targets missing node /Hermit/Missing")
	assert.Contains(t, errs, "has no next relationship")
}

func TestValidate_MissingDialogRoot(t *testing.T) {
	errs := validateJSON(t, `{
		"name": "Rootless",
		"nodes": [
			{
				"name": "Hermit",
				"kind": "dialogTree",
				"children": [
					{"name": "Farewell", "props": {"text": "Bye."}}
				]
			}
		]
	}`)
	assert.Contains(t, errs, `has no root node "Greeting"`)
}

func TestValidate_DuplicateTrigger(t *testing.T) {
	errs := validateJSON(t, `{
		"name": "Ambiguous Door",
		"nodes": [
			{
				"name": "Door",
				"kind": "stateMachine",
				"props": {"current": "closed"},
				"children": [
					{
						"name": "closed",
						"kind": "state",
						"children": [
							{
								"name": "Open",
								"kind": "transition",
								"props": {"trigger": "interact"},
								"rels": {"target": ["/Door/open"]}
							},
							{
								"name": "Lock",
								"kind": "transition",
								"props": {"trigger": "interact"},
								"rels": {"target": ["/Door/locked"]}
							}
						]
					},
					{"name": "open", "kind": "state"},
					{"name": "locked", "kind": "state"}
				]
			}
		]
	}`)
	assert.Contains(t, errs, `declares trigger "interact" more than once`)
}

func TestValidate_TransitionOutsideMachine(t *testing.T) {
	errs := validateJSON(t, `{
		"name": "Escapist Door",
		"nodes": [
			{
				"name": "Door",
				"kind": "stateMachine",
				"props": {"current": "closed"},
				"children": [
					{
						"name": "closed",
						"kind": "state",
						"children": [
							{
								"name": "Open",
								"kind": "transition",
								"props": {"trigger": "interact"},
								"rels": {"target": ["/Elsewhere/open"]}
							}
						]
					}
				]
			}
		]
	}`)
	assert.Contains(t, errs, "which is not a state of /Door")
}

func TestValidate_UnknownTypes(t *testing.T) {
	errs := validateJSON(t, `{
		"name": "Oddities",
		"nodes": [
			{"name": "Weather", "kind": "condition", "props": {"type": "weather"}},
			{"name": "Dance", "kind": "action", "props": {"type": "dance"}},
			{"name": "Empty", "kind": "selector"}
		]
	}`)
	assert.Contains(t, errs, `condition /Weather has unknown type "weather"`)
	assert.Contains(t, errs, `action /Dance has unknown type "dance"`)
	assert.Contains(t, errs, "selector /Empty has no children")
}

func TestValidateFile_StrictDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "X", "nodes": [], "extra": true}`), 0o644))

	v := NewWorldValidator()
	err := v.validateFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict JSON unmarshaling")

	err = v.validateFile(filepath.Join(dir, "not_json.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json extension")
}
