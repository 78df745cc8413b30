// Package dialog navigates NPC dialog graphs: condition-filtered response
// options, variant-resolved text, entry actions and conversation memory.
package dialog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/condition"
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Lookup failures reported by StartConversation and SelectResponse.
// All of them leave the prior session state unchanged.
var (
	ErrNPCNotFound   = errors.New("npc not found")
	ErrNoDialogTree  = errors.New("npc has no dialog tree")
	ErrMissingRoot   = errors.New("dialog tree has no root node")
	ErrMissingTarget = errors.New("response has no next target")
)

// DefaultRoot is the dialog node a conversation starts at when the tree
// does not name one.
const DefaultRoot = "Greeting"

// Exchange is the display payload for one dialog step: the resolved
// speaker and text plus the condition-filtered response options. Ended is
// set instead of Responses when the conversation has terminated.
type Exchange struct {
	Speaker   string
	Voice     string
	Text      string
	Responses []string
	Ended     bool
}

type session struct {
	npc  string
	tree string
	node string
}

// Navigator drives one conversation at a time. Session state is created
// by StartConversation and destroyed by an endDialog action or
// EndConversation; everything else lives in the world store and the
// external systems.
type Navigator struct {
	conditions *condition.Evaluator
	actions    *action.Dispatcher
	logger     *slog.Logger
	session    *session
}

// NewNavigator creates a dialog navigator.
func NewNavigator(conditions *condition.Evaluator, actions *action.Dispatcher, logger *slog.Logger) *Navigator {
	return &Navigator{conditions: conditions, actions: actions, logger: logger}
}

// Active reports whether a conversation session exists.
func (nav *Navigator) Active() bool {
	return nav.session != nil
}

// CurrentNode returns the path of the current dialog node, or "".
func (nav *Navigator) CurrentNode() string {
	if nav.session == nil {
		return ""
	}
	return nav.session.node
}

// StartConversation resolves the NPC's dialog tree, enters its root node
// and returns the first exchange. Any lookup failure aborts without
// touching an existing session.
func (nav *Navigator) StartConversation(npcPath string, ctx *game.Context) (*Exchange, error) {
	npc, ok := ctx.World.GetNode(npcPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNPCNotFound, npcPath)
	}
	targets := ctx.World.RelationshipTargets(npc, "dialogTree")
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDialogTree, npcPath)
	}
	tree, ok := ctx.World.GetNode(targets[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoDialogTree, npcPath, targets[0])
	}
	rootName := world.StringPropDefault(ctx.World, tree, "root", DefaultRoot)
	root := tree.Child(rootName)
	if root == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingRoot, tree.Path, rootName)
	}

	next := &session{npc: npcPath, tree: tree.Path, node: root.Path}
	exchange := nav.enterNode(root, next, ctx)
	if exchange.Ended {
		nav.session = nil
		return exchange, nil
	}
	nav.session = next
	nav.present(exchange, ctx)
	return exchange, nil
}

// SelectResponse follows the chosen response option of the current node.
// The filtered response list is recomputed from live external state, not
// cached from display time. An out-of-range index, like a missing
// session, is a no-op returning nil. Lookup failures on the next target
// abort with an error and leave the session unchanged.
func (nav *Navigator) SelectResponse(index int, ctx *game.Context) (*Exchange, error) {
	if nav.session == nil {
		return nil, nil
	}
	node, ok := ctx.World.GetNode(nav.session.node)
	if !ok {
		return nil, fmt.Errorf("current dialog node missing: %s", nav.session.node)
	}
	available := nav.availableResponses(node, ctx)
	if index < 0 || index >= len(available) {
		nav.log().Debug("response index out of range", "index", index, "available", len(available))
		return nil, nil
	}
	chosen := available[index]
	targets := ctx.World.RelationshipTargets(chosen, "next")
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingTarget, chosen.Path)
	}
	next, ok := ctx.World.GetNode(targets[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrMissingTarget, chosen.Path, targets[0])
	}

	nav.session.node = next.Path
	exchange := nav.enterNode(next, nav.session, ctx)
	if exchange.Ended {
		nav.session = nil
		return exchange, nil
	}
	nav.present(exchange, ctx)
	return exchange, nil
}

// EndConversation discards the session without running any actions.
// Hosts use it to cancel a conversation from outside the graph.
func (nav *Navigator) EndConversation() {
	nav.session = nil
}

// enterNode applies variant selections, runs the node's entry actions and
// builds the display payload. When an entry action ends the dialog the
// payload carries Ended instead of response options.
func (nav *Navigator) enterNode(node *world.Node, sess *session, ctx *game.Context) *Exchange {
	nav.applyVariants(node, sess.npc, ctx)
	if ctx.Memory != nil {
		ctx.Memory.MarkVisited(node.Path)
	}
	ended := nav.actions.ExecuteAll(node.ChildrenOfKind(world.KindAction), ctx)

	exchange := &Exchange{Ended: ended}
	if tree, ok := ctx.World.GetNode(sess.tree); ok {
		exchange.Speaker, _ = world.StringProp(ctx.World, tree, "speakerName")
		exchange.Voice, _ = world.StringProp(ctx.World, tree, "voiceType")
	}
	exchange.Text, _ = world.StringProp(ctx.World, node, "text")
	if !ended {
		for _, r := range nav.availableResponses(node, ctx) {
			text, _ := world.StringProp(ctx.World, r, "text")
			exchange.Responses = append(exchange.Responses, text)
		}
	}
	return exchange
}

// availableResponses filters the node's response options: every condition
// child must pass, and a response carrying requiresUnlock is offered only
// once that dialog id has been unlocked. Order is declaration order, so
// indexes are stable for SelectResponse against unchanged external state.
// The container is found by kind, so its name is up to the world author.
func (nav *Navigator) availableResponses(node *world.Node, ctx *game.Context) []*world.Node {
	var out []*world.Node
	for _, container := range node.ChildrenOfKind(world.KindResponses) {
		out = append(out, nav.filterResponses(container, ctx)...)
	}
	return out
}

func (nav *Navigator) filterResponses(container *world.Node, ctx *game.Context) []*world.Node {
	var out []*world.Node
	for _, r := range ctx.World.Children(container) {
		if r.Kind != world.KindResponse {
			continue
		}
		if unlock, ok := world.StringProp(ctx.World, r, "requiresUnlock"); ok {
			if ctx.Memory == nil || !ctx.Memory.IsUnlocked(unlock) {
				continue
			}
		}
		if !nav.conditions.EvaluateAll(r.ChildrenOfKind(world.KindCondition), ctx) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// applyVariants selects a variant on each axis the node declares, using
// the value the social context supplies for that axis. A value with no
// matching variant keeps the base content; that is not an error.
func (nav *Navigator) applyVariants(node *world.Node, npcPath string, ctx *game.Context) {
	if ctx.Social == nil {
		return
	}
	for _, vs := range node.Variants {
		value := ctx.Social.AxisValue(vs.Axis, npcPath)
		if value == "" {
			continue
		}
		if !ctx.World.SetVariantSelection(node, vs.Axis, value) {
			nav.log().Debug("no matching variant, keeping base content",
				"node", node.Path, "axis", vs.Axis, "value", value)
		}
	}
}

func (nav *Navigator) present(exchange *Exchange, ctx *game.Context) {
	if ctx.UI != nil {
		ctx.UI.ShowDialog(exchange.Speaker, exchange.Text, exchange.Responses)
	}
}

func (nav *Navigator) log() *slog.Logger {
	if nav.logger != nil {
		return nav.logger
	}
	return slog.Default()
}
