// Package condition evaluates typed predicate nodes against external
// game systems. Evaluation is pure: conditions read state, never mutate it.
package condition

import (
	"reflect"

	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Condition kinds registered by NewEvaluator.
const (
	KindQuest           = "quest"
	KindInventory       = "inventory"
	KindAttribute       = "attribute"
	KindBlackboard      = "blackboard"
	KindDistance        = "distance"
	KindEntityDetected  = "entityDetected"
	KindPerceptionAlert = "perceptionAlert"
	KindSchedule        = "schedule"
)

// Comparison tokens accepted by attribute, blackboard and distance conditions.
const (
	CompareEq  = "eq"
	CompareNeq = "neq"
	CompareLt  = "lt"
	CompareLte = "lte"
	CompareGt  = "gt"
	CompareGte = "gte"
)

// Func evaluates one condition node. It must not mutate external state.
type Func func(n *world.Node, ctx *game.Context) bool

// Evaluator dispatches condition nodes to kind handlers. The kind set is
// closed but extensible: hosts may Register additional kinds before use.
// Unknown kinds, missing parameters and unreachable external systems all
// fail closed (false) with a logged diagnostic, never an error.
type Evaluator struct {
	handlers map[string]Func
}

// NewEvaluator creates an evaluator with the built-in condition kinds
// registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{handlers: make(map[string]Func)}
	e.Register(KindQuest, evalQuest)
	e.Register(KindInventory, evalInventory)
	e.Register(KindAttribute, evalAttribute)
	e.Register(KindBlackboard, evalBlackboard)
	e.Register(KindDistance, evalDistance)
	e.Register(KindEntityDetected, evalEntityDetected)
	e.Register(KindPerceptionAlert, evalPerceptionAlert)
	e.Register(KindSchedule, evalSchedule)
	return e
}

// Register adds or replaces the handler for a condition kind.
func (e *Evaluator) Register(kind string, fn Func) {
	e.handlers[kind] = fn
}

// Kinds returns the registered condition kinds.
func (e *Evaluator) Kinds() []string {
	out := make([]string, 0, len(e.handlers))
	for k := range e.handlers {
		out = append(out, k)
	}
	return out
}

// Evaluate dispatches one condition node on its "type" property.
func (e *Evaluator) Evaluate(n *world.Node, ctx *game.Context) bool {
	kind, ok := world.StringProp(ctx.World, n, "type")
	if !ok {
		ctx.Warn("condition node has no type", "path", n.Path)
		return false
	}
	fn, ok := e.handlers[kind]
	if !ok {
		ctx.Warn("unknown condition type", "path", n.Path, "type", kind)
		return false
	}
	return fn(n, ctx)
}

// EvaluateAll is the composite AND rule used by dialog responses and
// behavior-tree sequences: conditions are evaluated in declaration order
// and the first failure short-circuits the rest. An empty list passes.
func (e *Evaluator) EvaluateAll(nodes []*world.Node, ctx *game.Context) bool {
	for _, n := range nodes {
		if !e.Evaluate(n, ctx) {
			return false
		}
	}
	return true
}

func evalQuest(n *world.Node, ctx *game.Context) bool {
	if ctx.Quests == nil {
		ctx.Warn("quest store unavailable", "path", n.Path)
		return false
	}
	questID, ok := world.StringProp(ctx.World, n, "questId")
	if !ok {
		ctx.Warn("quest condition missing questId", "path", n.Path)
		return false
	}
	required, ok := world.StringProp(ctx.World, n, "state")
	if !ok {
		ctx.Warn("quest condition missing state", "path", n.Path)
		return false
	}
	return ctx.Quests.QuestState(questID) == required
}

func evalInventory(n *world.Node, ctx *game.Context) bool {
	if ctx.Inventory == nil {
		ctx.Warn("inventory store unavailable", "path", n.Path)
		return false
	}
	itemID, ok := world.StringProp(ctx.World, n, "itemId")
	if !ok {
		ctx.Warn("inventory condition missing itemId", "path", n.Path)
		return false
	}
	quantity := 1
	if q, ok := world.IntProp(ctx.World, n, "quantity"); ok {
		quantity = q
	}
	return ctx.Inventory.ItemQuantity(itemID) >= quantity
}

// evalAttribute compares a numeric property on a world entity against a
// threshold. subjectRef defaults to the context subject.
func evalAttribute(n *world.Node, ctx *game.Context) bool {
	attr, ok := world.StringProp(ctx.World, n, "attributePath")
	if !ok {
		ctx.Warn("attribute condition missing attributePath", "path", n.Path)
		return false
	}
	threshold, ok := world.FloatProp(ctx.World, n, "threshold")
	if !ok {
		ctx.Warn("attribute condition missing threshold", "path", n.Path)
		return false
	}
	subjectPath := world.StringPropDefault(ctx.World, n, "subjectRef", ctx.Subject)
	subject, ok := ctx.World.GetNode(subjectPath)
	if !ok {
		ctx.Warn("attribute condition subject not found", "path", n.Path, "subject", subjectPath)
		return false
	}
	value, ok := world.FloatProp(ctx.World, subject, attr)
	if !ok {
		ctx.Warn("attribute not found on subject", "path", n.Path, "subject", subjectPath, "attribute", attr)
		return false
	}
	comparison := world.StringPropDefault(ctx.World, n, "comparison", CompareGte)
	return compareFloats(comparison, value, threshold)
}

func evalBlackboard(n *world.Node, ctx *game.Context) bool {
	if ctx.Blackboard == nil {
		ctx.Warn("blackboard unavailable", "path", n.Path)
		return false
	}
	key, ok := world.StringProp(ctx.World, n, "key")
	if !ok {
		ctx.Warn("blackboard condition missing key", "path", n.Path)
		return false
	}
	expected, ok := ctx.World.Property(n, "value")
	if !ok {
		ctx.Warn("blackboard condition missing value", "path", n.Path)
		return false
	}
	actual, ok := ctx.Blackboard.Get(key)
	if !ok {
		return false
	}
	comparison := world.StringPropDefault(ctx.World, n, "comparison", CompareEq)
	return compareValues(comparison, actual, expected)
}

// evalDistance compares the distance between the subject's and the
// target's position properties against a range.
func evalDistance(n *world.Node, ctx *game.Context) bool {
	targets := ctx.World.RelationshipTargets(n, "targetRef")
	if len(targets) == 0 {
		ctx.Warn("distance condition missing targetRef", "path", n.Path)
		return false
	}
	rng, ok := world.FloatProp(ctx.World, n, "range")
	if !ok {
		ctx.Warn("distance condition missing range", "path", n.Path)
		return false
	}
	subject, ok := ctx.World.GetNode(ctx.Subject)
	if !ok {
		ctx.Warn("distance condition subject not found", "path", n.Path, "subject", ctx.Subject)
		return false
	}
	target, ok := ctx.World.GetNode(targets[0])
	if !ok {
		ctx.Warn("distance condition target not found", "path", n.Path, "target", targets[0])
		return false
	}
	a, ok := world.Vec3Prop(ctx.World, subject, "position")
	if !ok {
		return false
	}
	b, ok := world.Vec3Prop(ctx.World, target, "position")
	if !ok {
		return false
	}
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	distSq := dx*dx + dy*dy + dz*dz
	comparison := world.StringPropDefault(ctx.World, n, "comparison", CompareLte)
	return compareFloats(comparison, distSq, rng*rng)
}

func evalEntityDetected(n *world.Node, ctx *game.Context) bool {
	if ctx.Perception == nil {
		ctx.Warn("perception store unavailable", "path", n.Path)
		return false
	}
	entityType, ok := world.StringProp(ctx.World, n, "entityType")
	if !ok {
		ctx.Warn("entityDetected condition missing entityType", "path", n.Path)
		return false
	}
	sourceRef := world.StringPropDefault(ctx.World, n, "sourceRef", ctx.Subject)
	return ctx.Perception.IsEntityDetected(sourceRef, entityType)
}

func evalPerceptionAlert(n *world.Node, ctx *game.Context) bool {
	if ctx.Perception == nil {
		ctx.Warn("perception store unavailable", "path", n.Path)
		return false
	}
	minAlert, ok := world.FloatProp(ctx.World, n, "minimumAlertness")
	if !ok {
		ctx.Warn("perceptionAlert condition missing minimumAlertness", "path", n.Path)
		return false
	}
	sourceRef := world.StringPropDefault(ctx.World, n, "sourceRef", ctx.Subject)
	return ctx.Perception.Alertness(sourceRef) >= minAlert
}

func evalSchedule(n *world.Node, ctx *game.Context) bool {
	if ctx.Schedule == nil {
		ctx.Warn("schedule store unavailable", "path", n.Path)
		return false
	}
	activity, ok := world.StringProp(ctx.World, n, "activity")
	if !ok {
		ctx.Warn("schedule condition missing activity", "path", n.Path)
		return false
	}
	sourceRef := world.StringPropDefault(ctx.World, n, "sourceRef", ctx.Subject)
	return ctx.Schedule.CurrentActivity(sourceRef) == activity
}

func compareFloats(op string, a, b float64) bool {
	switch op {
	case CompareEq:
		return a == b
	case CompareNeq:
		return a != b
	case CompareLt:
		return a < b
	case CompareLte:
		return a <= b
	case CompareGt:
		return a > b
	case CompareGte:
		return a >= b
	}
	return false
}

// compareValues compares blackboard values. Numeric values compare
// numerically; everything else supports eq/neq only, compared
// structurally so slice- and map-valued entries never panic.
func compareValues(op string, a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return compareFloats(op, af, bf)
	}
	switch op {
	case CompareEq:
		return reflect.DeepEqual(a, b)
	case CompareNeq:
		return !reflect.DeepEqual(a, b)
	}
	return false
}

func toFloat(v any) (float64, bool) {
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
