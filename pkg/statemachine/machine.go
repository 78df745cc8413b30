// Package statemachine runs finite-state execution for interactable
// objects: doors, chests, levers. The machine definition lives in the
// world store; the runtime owns only the current-state string.
package statemachine

import (
	"fmt"

	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// TriggerTimerElapsed is the implicit trigger fired by OnTimerElapsed for
// states that declare a duration. The host owns the clock; the runtime
// never schedules anything itself.
const TriggerTimerElapsed = "animation_complete"

// Requirement gates a transition on held inventory. RemoveOnUse consumes
// the items as a side effect of a successful fire.
type Requirement struct {
	ItemID      string
	Quantity    int
	RemoveOnUse bool
}

// Transition is one outgoing edge of a state.
type Transition struct {
	Trigger     string
	Target      string
	Requirement *Requirement
}

// State is one named state with its enter actions and outgoing transitions.
type State struct {
	Name        string
	Duration    float64
	HasDuration bool
	EnterActs   []*world.Node
	Transitions []Transition
}

// Machine is a loaded state machine instance. One instance exists per
// entity; instances do not share mutable state.
type Machine struct {
	Path    string
	actions *action.Dispatcher
	states  map[string]*State
	current string
}

// Load builds a Machine from a stateMachine node. The initial state is
// whatever the node's "current" property names at load time.
func Load(store world.Store, path string, actions *action.Dispatcher) (*Machine, error) {
	node, ok := store.GetNode(path)
	if !ok {
		return nil, fmt.Errorf("state machine not found: %s", path)
	}
	m := &Machine{
		Path:    path,
		actions: actions,
		states:  make(map[string]*State),
	}
	for _, child := range store.Children(node) {
		if child.Kind != world.KindState {
			continue
		}
		st := &State{Name: child.Name()}
		if d, ok := world.FloatProp(store, child, "duration"); ok {
			st.Duration = d
			st.HasDuration = true
		}
		st.EnterActs = child.ChildrenOfKind(world.KindAction)
		for _, tn := range child.ChildrenOfKind(world.KindTransition) {
			trigger, ok := world.StringProp(store, tn, "trigger")
			if !ok {
				continue
			}
			targets := store.RelationshipTargets(tn, "target")
			if len(targets) == 0 {
				continue
			}
			tr := Transition{Trigger: trigger, Target: lastSegment(targets[0])}
			if rn := tn.Child("Requirement"); rn != nil && rn.Kind == world.KindRequirement {
				itemID, ok := world.StringProp(store, rn, "itemId")
				if ok {
					req := &Requirement{ItemID: itemID, Quantity: 1}
					if q, ok := world.IntProp(store, rn, "quantity"); ok {
						req.Quantity = q
					}
					req.RemoveOnUse, _ = world.BoolProp(store, rn, "removeOnUse")
					tr.Requirement = req
				}
			}
			st.Transitions = append(st.Transitions, tr)
		}
		m.states[st.Name] = st
	}
	initial, _ := world.StringProp(store, node, "current")
	if _, ok := m.states[initial]; !ok {
		return nil, fmt.Errorf("state machine %s: current state %q does not exist", path, initial)
	}
	m.current = initial
	return m, nil
}

// Current returns the current state name.
func (m *Machine) Current() string {
	return m.current
}

// Restore sets the current state, e.g. from persisted session data.
// It returns false when the named state does not exist.
func (m *Machine) Restore(state string) bool {
	if _, ok := m.states[state]; !ok {
		return false
	}
	m.current = state
	return true
}

// Fire attempts a transition out of the current state. An unmatched
// trigger or an unmet requirement is a no-op returning false, so hosts
// may fire triggers speculatively. When a transition with a trigger is
// declared more than once on a state, the first declared one is the one
// considered; cmd/validate flags such machines.
func (m *Machine) Fire(trigger string, ctx *game.Context) bool {
	st := m.states[m.current]
	if st == nil {
		return false
	}
	for i := range st.Transitions {
		tr := &st.Transitions[i]
		if tr.Trigger != trigger {
			continue
		}
		if !m.passRequirement(tr.Requirement, ctx) {
			ctx.Debug("transition requirement not met",
				"machine", m.Path, "state", m.current, "trigger", trigger)
			return false
		}
		target := m.states[tr.Target]
		if target == nil {
			ctx.Warn("transition target does not exist",
				"machine", m.Path, "state", m.current, "target", tr.Target)
			return false
		}
		// Enter actions are fire-and-forget; their failures never block
		// the transition.
		for _, act := range target.EnterActs {
			m.actions.Execute(act, ctx)
		}
		m.current = target.Name
		ctx.Debug("state transition",
			"machine", m.Path, "from", st.Name, "to", target.Name, "trigger", trigger)
		return true
	}
	return false
}

// OnTimerElapsed fires the implicit timer trigger for the current state.
// The host calls this once the current state's duration has elapsed; it
// is a no-op when the current state declares no duration.
func (m *Machine) OnTimerElapsed(ctx *game.Context) bool {
	st := m.states[m.current]
	if st == nil || !st.HasDuration {
		return false
	}
	return m.Fire(TriggerTimerElapsed, ctx)
}

// StateDuration returns the current state's duration in seconds, if any.
// Hosts use it to schedule the OnTimerElapsed callback.
func (m *Machine) StateDuration() (float64, bool) {
	st := m.states[m.current]
	if st == nil || !st.HasDuration {
		return 0, false
	}
	return st.Duration, true
}

// passRequirement checks an optional transition requirement and, when
// removeOnUse is set, consumes the items on success.
func (m *Machine) passRequirement(req *Requirement, ctx *game.Context) bool {
	if req == nil {
		return true
	}
	if ctx.Inventory == nil {
		ctx.Warn("inventory store unavailable for requirement", "machine", m.Path)
		return false
	}
	if ctx.Inventory.ItemQuantity(req.ItemID) < req.Quantity {
		return false
	}
	if req.RemoveOnUse {
		if !ctx.Inventory.Remove(req.ItemID, req.Quantity) {
			return false
		}
	}
	return true
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
