// Package behavior evaluates hierarchical behavior trees for NPC AI:
// selector and sequence composites over condition and action leaves.
// One Tick is one full evaluation pass; the host chooses the cadence.
package behavior

import (
	"sort"

	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/condition"
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Status is the result of ticking a behavior tree node.
type Status int

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	}
	return "unknown"
}

// Evaluator ticks behavior trees. It is stateless across entities; all
// per-entity state lives in a Runtime.
type Evaluator struct {
	conditions *condition.Evaluator
	actions    *action.Dispatcher
}

// NewEvaluator creates a behavior tree evaluator over the given condition
// evaluator and action dispatcher.
func NewEvaluator(conditions *condition.Evaluator, actions *action.Dispatcher) *Evaluator {
	return &Evaluator{conditions: conditions, actions: actions}
}

// Runtime holds one entity's cross-tick state: sequence resume points and
// pending waitForCompletion actions. It lives for the entity's lifetime.
type Runtime struct {
	resume  map[string]int
	waiting map[string]*pendingAction
}

type pendingAction struct {
	done bool
	ok   bool
}

// NewRuntime creates an empty per-entity runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		resume:  make(map[string]int),
		waiting: make(map[string]*pendingAction),
	}
}

// NotifyActionComplete reports that a waitForCompletion action leaf has
// finished. The next tick of that leaf returns Success or Failure
// accordingly instead of Running.
func (rt *Runtime) NotifyActionComplete(nodePath string, ok bool) {
	if p, exists := rt.waiting[nodePath]; exists {
		p.done = true
		p.ok = ok
	}
}

// Waiting returns the paths of action leaves currently suspended on
// completion, for hosts that track in-flight engine work.
func (rt *Runtime) Waiting() []string {
	var out []string
	for path, p := range rt.waiting {
		if !p.done {
			out = append(out, path)
		}
	}
	return out
}

// Tick evaluates the tree rooted at root once.
func (e *Evaluator) Tick(root *world.Node, rt *Runtime, ctx *game.Context) Status {
	if root == nil {
		return Failure
	}
	return e.tick(root, rt, ctx)
}

func (e *Evaluator) tick(n *world.Node, rt *Runtime, ctx *game.Context) Status {
	switch n.Kind {
	case world.KindSelector:
		return e.tickSelector(n, rt, ctx)
	case world.KindSequence:
		return e.tickSequence(n, rt, ctx)
	case world.KindCondition:
		if e.conditions.Evaluate(n, ctx) {
			return Success
		}
		return Failure
	case world.KindAction:
		return e.tickAction(n, rt, ctx)
	}
	ctx.Warn("unknown behavior node kind", "path", n.Path, "kind", n.Kind)
	return Failure
}

// tickSelector evaluates children from highest priority to lowest and
// returns the status of the first child that is not Failure. Priority is
// only meaningful among selector children; ties keep declaration order.
func (e *Evaluator) tickSelector(n *world.Node, rt *Runtime, ctx *game.Context) Status {
	children := byPriority(ctx.World, ctx.World.Children(n))
	for _, c := range children {
		if st := e.tick(c, rt, ctx); st != Failure {
			return st
		}
	}
	return Failure
}

// tickSequence evaluates children in declaration order. The first Failure
// or Running stops the pass; a Running child is remembered so the next
// tick resumes at that child rather than re-running completed siblings.
// Actions already executed earlier in the sequence are not rolled back.
func (e *Evaluator) tickSequence(n *world.Node, rt *Runtime, ctx *game.Context) Status {
	children := ctx.World.Children(n)
	start := rt.resume[n.Path]
	if start >= len(children) {
		start = 0
	}
	for i := start; i < len(children); i++ {
		switch st := e.tick(children[i], rt, ctx); st {
		case Failure:
			delete(rt.resume, n.Path)
			return Failure
		case Running:
			rt.resume[n.Path] = i
			return Running
		}
	}
	delete(rt.resume, n.Path)
	return Success
}

// tickAction dispatches an action leaf. With waitForCompletion set, the
// leaf returns Running until the host calls NotifyActionComplete; the
// suspension is cooperative, never blocking.
func (e *Evaluator) tickAction(n *world.Node, rt *Runtime, ctx *game.Context) Status {
	if p, exists := rt.waiting[n.Path]; exists {
		if !p.done {
			return Running
		}
		delete(rt.waiting, n.Path)
		if p.ok {
			return Success
		}
		return Failure
	}
	res := e.actions.Execute(n, ctx)
	if !res.OK {
		return Failure
	}
	if wait, _ := world.BoolProp(ctx.World, n, "waitForCompletion"); wait {
		rt.waiting[n.Path] = &pendingAction{}
		return Running
	}
	return Success
}

// byPriority orders sibling nodes by descending "priority" property.
// The sort is stable, so equal priorities (including the implicit 0)
// keep first-declared-wins ordering.
func byPriority(store world.Store, children []*world.Node) []*world.Node {
	ordered := make([]*world.Node, len(children))
	copy(ordered, children)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, _ := world.IntProp(store, ordered[i], "priority")
		pj, _ := world.IntProp(store, ordered[j], "priority")
		return pi > pj
	})
	return ordered
}
