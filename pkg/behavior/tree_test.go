package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/condition"
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// counters records evaluation order via registered condition/action kinds.
type counters struct {
	evaluated []string
}

func newTestEvaluator(c *counters, conditionResults map[string]bool) *Evaluator {
	conds := condition.NewEvaluator()
	conds.Register("stub", func(n *world.Node, ctx *game.Context) bool {
		c.evaluated = append(c.evaluated, n.Path)
		return conditionResults[n.Path]
	})

	acts := action.NewDispatcher()
	acts.Register("stub", func(n *world.Node, ctx *game.Context) action.Result {
		c.evaluated = append(c.evaluated, n.Path)
		return action.Result{Kind: "stub", OK: true}
	})
	acts.Register("stub_fail", func(n *world.Node, ctx *game.Context) action.Result {
		c.evaluated = append(c.evaluated, n.Path)
		return action.Result{Kind: "stub_fail", OK: false}
	})
	return NewEvaluator(conds, acts)
}

func condLeaf(path string, priority int) *world.Node {
	props := map[string]any{"type": "stub"}
	if priority != 0 {
		props["priority"] = priority
	}
	return &world.Node{Path: path, Kind: world.KindCondition, Props: props}
}

func actionLeaf(path, kind string, priority int) *world.Node {
	props := map[string]any{"type": kind}
	if priority != 0 {
		props["priority"] = priority
	}
	return &world.Node{Path: path, Kind: world.KindAction, Props: props}
}

func buildTree(root *world.Node) (*world.MemoryStore, *game.Context) {
	store := world.NewMemoryStore()
	store.AddTree(root)
	return store, &game.Context{World: store, Blackboard: game.NewMemoryBlackboard()}
}

func TestTick_SelectorPriorityOrder(t *testing.T) {
	// Siblings with priorities [100, 80, 50, 0]; only the priority-50
	// condition passes. The priority-0 subtree must not be evaluated.
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSelector,
		Children: []*world.Node{
			condLeaf("/bt/p0", 0),
			condLeaf("/bt/p50", 50),
			condLeaf("/bt/p100", 100),
			condLeaf("/bt/p80", 80),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, map[string]bool{"/bt/p50": true})

	status := e.Tick(root, NewRuntime(), ctx)
	assert.Equal(t, Success, status)
	assert.Equal(t, []string{"/bt/p100", "/bt/p80", "/bt/p50"}, c.evaluated)
}

func TestTick_SelectorTiesKeepDeclarationOrder(t *testing.T) {
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSelector,
		Children: []*world.Node{
			condLeaf("/bt/first", 10),
			condLeaf("/bt/second", 10),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, map[string]bool{"/bt/second": true})

	status := e.Tick(root, NewRuntime(), ctx)
	assert.Equal(t, Success, status)
	assert.Equal(t, []string{"/bt/first", "/bt/second"}, c.evaluated)
}

func TestTick_SelectorAllFail(t *testing.T) {
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSelector,
		Children: []*world.Node{
			condLeaf("/bt/a", 0),
			condLeaf("/bt/b", 0),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, nil)
	assert.Equal(t, Failure, e.Tick(root, NewRuntime(), ctx))
	assert.Len(t, c.evaluated, 2)
}

func TestTick_SequenceShortCircuit(t *testing.T) {
	// An action followed by a failing condition: the action runs exactly
	// once, the sequence fails, and the trailing sibling never runs.
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSequence,
		Children: []*world.Node{
			actionLeaf("/bt/act", "stub", 0),
			condLeaf("/bt/check", 0),
			actionLeaf("/bt/after", "stub", 0),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, nil)

	status := e.Tick(root, NewRuntime(), ctx)
	assert.Equal(t, Failure, status)
	assert.Equal(t, []string{"/bt/act", "/bt/check"}, c.evaluated)
}

func TestTick_SequenceSuccess(t *testing.T) {
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSequence,
		Children: []*world.Node{
			condLeaf("/bt/check", 0),
			actionLeaf("/bt/act", "stub", 0),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, map[string]bool{"/bt/check": true})
	assert.Equal(t, Success, e.Tick(root, NewRuntime(), ctx))
}

func TestTick_FailedActionFailsSequence(t *testing.T) {
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSequence,
		Children: []*world.Node{
			actionLeaf("/bt/bad", "stub_fail", 0),
			actionLeaf("/bt/after", "stub", 0),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, nil)
	assert.Equal(t, Failure, e.Tick(root, NewRuntime(), ctx))
	assert.Equal(t, []string{"/bt/bad"}, c.evaluated)
}

func TestTick_WaitForCompletion(t *testing.T) {
	wait := actionLeaf("/bt/wait", "stub", 0)
	wait.Props["waitForCompletion"] = true
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSequence,
		Children: []*world.Node{
			actionLeaf("/bt/before", "stub", 0),
			wait,
			actionLeaf("/bt/after", "stub", 0),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, nil)
	rt := NewRuntime()

	// First tick: the waiting action dispatches and suspends.
	require.Equal(t, Running, e.Tick(root, rt, ctx))
	assert.Equal(t, []string{"/bt/before", "/bt/wait"}, c.evaluated)

	// Re-tick before completion: resumes at the waiting child, does not
	// re-run earlier siblings and does not re-dispatch the action.
	require.Equal(t, Running, e.Tick(root, rt, ctx))
	assert.Equal(t, []string{"/bt/before", "/bt/wait"}, c.evaluated)

	// Host reports completion; the next tick finishes the sequence.
	rt.NotifyActionComplete("/bt/wait", true)
	require.Equal(t, Success, e.Tick(root, rt, ctx))
	assert.Equal(t, []string{"/bt/before", "/bt/wait", "/bt/after"}, c.evaluated)
}

func TestTick_WaitForCompletionFailure(t *testing.T) {
	wait := actionLeaf("/bt/wait", "stub", 0)
	wait.Props["waitForCompletion"] = true
	root := &world.Node{
		Path:     "/bt",
		Kind:     world.KindSequence,
		Children: []*world.Node{wait},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, nil)
	rt := NewRuntime()

	require.Equal(t, Running, e.Tick(root, rt, ctx))
	rt.NotifyActionComplete("/bt/wait", false)
	assert.Equal(t, Failure, e.Tick(root, rt, ctx))

	// Runtime state is cleared; the next tick starts over.
	require.Equal(t, Running, e.Tick(root, rt, ctx))
	assert.Equal(t, []string{"/bt/wait", "/bt/wait"}, c.evaluated)
}

func TestTick_RunningPropagatesThroughSelector(t *testing.T) {
	wait := actionLeaf("/bt/high/wait", "stub", 0)
	wait.Props["waitForCompletion"] = true
	root := &world.Node{
		Path: "/bt",
		Kind: world.KindSelector,
		Children: []*world.Node{
			{
				Path:  "/bt/high",
				Kind:  world.KindSequence,
				Props: map[string]any{"priority": 100},
				Children: []*world.Node{
					condLeaf("/bt/high/check", 0),
					wait,
				},
			},
			actionLeaf("/bt/low", "stub", 50),
		},
	}
	_, ctx := buildTree(root)

	c := &counters{}
	e := newTestEvaluator(c, map[string]bool{"/bt/high/check": true})
	rt := NewRuntime()

	// Running short-circuits lower-priority siblings.
	require.Equal(t, Running, e.Tick(root, rt, ctx))
	assert.NotContains(t, c.evaluated, "/bt/low")
}

func TestTick_GuardTree(t *testing.T) {
	// A small guard brain: combat when a player is detected, otherwise
	// patrol. Uses the built-in condition and action kinds end to end.
	root := &world.Node{
		Path: "/guard/bt",
		Kind: world.KindSelector,
		Children: []*world.Node{
			{
				Path:  "/guard/bt/combat",
				Kind:  world.KindSequence,
				Props: map[string]any{"priority": 100},
				Children: []*world.Node{
					{
						Path:  "/guard/bt/combat/sees_player",
						Kind:  world.KindCondition,
						Props: map[string]any{"type": "entityDetected", "entityType": "player"},
					},
					{
						Path:  "/guard/bt/combat/engage",
						Kind:  world.KindAction,
						Props: map[string]any{"type": "combat", "stance": "aggressive"},
					},
				},
			},
			{
				Path:  "/guard/bt/patrol",
				Kind:  world.KindAction,
				Props: map[string]any{"type": "patrol", "route": "wall_loop", "priority": 10},
			},
		},
	}
	store := world.NewMemoryStore()
	store.AddTree(root)

	perception := game.NewMemoryPerception()
	engine := &game.RecordingEngine{}
	ctx := &game.Context{
		World:      store,
		Perception: perception,
		Engine:     engine,
		Subject:    "/guard",
	}

	e := NewEvaluator(condition.NewEvaluator(), action.NewDispatcher())
	rt := NewRuntime()

	require.Equal(t, Success, e.Tick(root, rt, ctx))
	require.Len(t, engine.Signals, 1)
	assert.Equal(t, "patrol", engine.Signals[0].Kind)

	perception.SetDetected("/guard", "player", true)
	require.Equal(t, Success, e.Tick(root, rt, ctx))
	require.Len(t, engine.Signals, 2)
	assert.Equal(t, "combat", engine.Signals[1].Kind)
}

func TestTick_NilAndUnknown(t *testing.T) {
	_, ctx := buildTree(&world.Node{Path: "/x", Kind: world.KindSelector})
	c := &counters{}
	e := newTestEvaluator(c, nil)

	assert.Equal(t, Failure, e.Tick(nil, NewRuntime(), ctx))

	odd := &world.Node{Path: "/odd", Kind: "decorator"}
	assert.Equal(t, Failure, e.Tick(odd, NewRuntime(), ctx))
}
