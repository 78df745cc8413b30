// Package action executes typed effect nodes against external game
// systems. Actions are fire-and-forget: a failed action is logged and
// reported in its Result, but never aborts sibling actions and is never
// rolled back.
package action

import (
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Action kinds registered by NewDispatcher.
const (
	KindOpenShop           = "openShop"
	KindQuestProgress      = "questProgress"
	KindGiveItem           = "giveItem"
	KindRemoveItem         = "removeItem"
	KindModifyCurrency     = "modifyCurrency"
	KindModifyReputation   = "modifyReputation"
	KindEndDialog          = "endDialog"
	KindUnlockDialog       = "unlockDialog"
	KindSetBlackboard      = "setBlackboard"
	KindCallReinforcements = "callReinforcements"
	KindAnimation          = "animation"
	KindCombat             = "combat"
	KindMovement           = "movement"
	KindLookAt             = "lookAt"
	KindPatrol             = "patrol"
)

// Result reports the outcome of one dispatched action.
type Result struct {
	Kind string
	OK   bool
	// EndDialog is set by the endDialog action; the dialog navigator
	// clears its session when it sees it.
	EndDialog bool
}

// Func executes one action node.
type Func func(n *world.Node, ctx *game.Context) Result

// Dispatcher routes action nodes to kind handlers resolved at
// construction time. Hosts may Register additional kinds.
type Dispatcher struct {
	handlers map[string]Func
}

// NewDispatcher creates a dispatcher with the built-in action kinds
// registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Func)}
	d.Register(KindOpenShop, execOpenShop)
	d.Register(KindQuestProgress, execQuestProgress)
	d.Register(KindGiveItem, execGiveItem)
	d.Register(KindRemoveItem, execRemoveItem)
	d.Register(KindModifyCurrency, execModifyCurrency)
	d.Register(KindModifyReputation, execModifyReputation)
	d.Register(KindEndDialog, execEndDialog)
	d.Register(KindUnlockDialog, execUnlockDialog)
	d.Register(KindSetBlackboard, execSetBlackboard)
	d.Register(KindCallReinforcements, execEngineSignal)
	d.Register(KindAnimation, execEngineSignal)
	d.Register(KindCombat, execEngineSignal)
	d.Register(KindMovement, execEngineSignal)
	d.Register(KindLookAt, execEngineSignal)
	d.Register(KindPatrol, execEngineSignal)
	return d
}

// Register adds or replaces the handler for an action kind.
func (d *Dispatcher) Register(kind string, fn Func) {
	d.handlers[kind] = fn
}

// Kinds returns the registered action kinds.
func (d *Dispatcher) Kinds() []string {
	out := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		out = append(out, k)
	}
	return out
}

// Execute dispatches one action node on its "type" property.
func (d *Dispatcher) Execute(n *world.Node, ctx *game.Context) Result {
	kind, ok := world.StringProp(ctx.World, n, "type")
	if !ok {
		ctx.Warn("action node has no type", "path", n.Path)
		return Result{OK: false}
	}
	fn, ok := d.handlers[kind]
	if !ok {
		ctx.Warn("unknown action type", "path", n.Path, "type", kind)
		return Result{Kind: kind, OK: false}
	}
	res := fn(n, ctx)
	if !res.OK {
		ctx.Warn("action failed", "path", n.Path, "type", kind)
	}
	return res
}

// ExecuteAll runs action nodes in declaration order, synchronously.
// Failures do not stop later siblings. It reports whether any action
// requested the dialog to end.
func (d *Dispatcher) ExecuteAll(nodes []*world.Node, ctx *game.Context) (endDialog bool) {
	for _, n := range nodes {
		if d.Execute(n, ctx).EndDialog {
			endDialog = true
		}
	}
	return endDialog
}

func execOpenShop(n *world.Node, ctx *game.Context) Result {
	if ctx.UI == nil {
		return Result{Kind: KindOpenShop}
	}
	shopID := world.StringPropDefault(ctx.World, n, "shopId", ctx.Subject)
	ctx.UI.OpenShop(shopID)
	return Result{Kind: KindOpenShop, OK: true}
}

func execQuestProgress(n *world.Node, ctx *game.Context) Result {
	if ctx.Quests == nil {
		return Result{Kind: KindQuestProgress}
	}
	questID, ok := world.StringProp(ctx.World, n, "questId")
	if !ok {
		return Result{Kind: KindQuestProgress}
	}
	op, ok := world.StringProp(ctx.World, n, "operation")
	if !ok {
		return Result{Kind: KindQuestProgress}
	}
	return Result{Kind: KindQuestProgress, OK: ctx.Quests.Progress(questID, op)}
}

func execGiveItem(n *world.Node, ctx *game.Context) Result {
	if ctx.Inventory == nil {
		return Result{Kind: KindGiveItem}
	}
	itemID, ok := world.StringProp(ctx.World, n, "itemId")
	if !ok {
		return Result{Kind: KindGiveItem}
	}
	quantity := 1
	if q, ok := world.IntProp(ctx.World, n, "quantity"); ok {
		quantity = q
	}
	ctx.Inventory.Give(itemID, quantity)
	return Result{Kind: KindGiveItem, OK: true}
}

func execRemoveItem(n *world.Node, ctx *game.Context) Result {
	if ctx.Inventory == nil {
		return Result{Kind: KindRemoveItem}
	}
	itemID, ok := world.StringProp(ctx.World, n, "itemId")
	if !ok {
		return Result{Kind: KindRemoveItem}
	}
	quantity := 1
	if q, ok := world.IntProp(ctx.World, n, "quantity"); ok {
		quantity = q
	}
	// Fails on insufficient quantity; the inventory is left untouched.
	return Result{Kind: KindRemoveItem, OK: ctx.Inventory.Remove(itemID, quantity)}
}

func execModifyCurrency(n *world.Node, ctx *game.Context) Result {
	if ctx.Currency == nil {
		return Result{Kind: KindModifyCurrency}
	}
	currency, ok := world.StringProp(ctx.World, n, "currency")
	if !ok {
		return Result{Kind: KindModifyCurrency}
	}
	amount, ok := world.IntProp(ctx.World, n, "amount")
	if !ok {
		return Result{Kind: KindModifyCurrency}
	}
	return Result{Kind: KindModifyCurrency, OK: ctx.Currency.Modify(currency, amount)}
}

func execModifyReputation(n *world.Node, ctx *game.Context) Result {
	if ctx.Reputation == nil {
		return Result{Kind: KindModifyReputation}
	}
	faction, ok := world.StringProp(ctx.World, n, "faction")
	if !ok {
		return Result{Kind: KindModifyReputation}
	}
	amount, ok := world.IntProp(ctx.World, n, "amount")
	if !ok {
		return Result{Kind: KindModifyReputation}
	}
	ctx.Reputation.Modify(faction, amount)
	return Result{Kind: KindModifyReputation, OK: true}
}

// execEndDialog carries no side effect of its own; it only signals the
// navigator through the Result, which makes a second dispatch a no-op.
func execEndDialog(n *world.Node, ctx *game.Context) Result {
	return Result{Kind: KindEndDialog, OK: true, EndDialog: true}
}

func execUnlockDialog(n *world.Node, ctx *game.Context) Result {
	if ctx.Memory == nil {
		return Result{Kind: KindUnlockDialog}
	}
	dialogID, ok := world.StringProp(ctx.World, n, "dialogId")
	if !ok {
		return Result{Kind: KindUnlockDialog}
	}
	ctx.Memory.Unlock(dialogID)
	return Result{Kind: KindUnlockDialog, OK: true}
}

func execSetBlackboard(n *world.Node, ctx *game.Context) Result {
	if ctx.Blackboard == nil {
		return Result{Kind: KindSetBlackboard}
	}
	key, ok := world.StringProp(ctx.World, n, "key")
	if !ok {
		return Result{Kind: KindSetBlackboard}
	}
	value, ok := ctx.World.Property(n, "value")
	if !ok {
		return Result{Kind: KindSetBlackboard}
	}
	ctx.Blackboard.Set(key, value)
	return Result{Kind: KindSetBlackboard, OK: true}
}

// execEngineSignal forwards engine-signal actions (animation, combat,
// movement, lookAt, patrol, callReinforcements) to the host with the
// node's parameters. Subtype parameters vary per kind and are passed
// through untouched.
func execEngineSignal(n *world.Node, ctx *game.Context) Result {
	kind, _ := world.StringProp(ctx.World, n, "type")
	if ctx.Engine == nil {
		return Result{Kind: kind}
	}
	params := make(map[string]any)
	for _, name := range n.PropertyNames() {
		if name == "type" {
			continue
		}
		if v, ok := ctx.World.Property(n, name); ok {
			params[name] = v
		}
	}
	ctx.Engine.Signal(ctx.Subject, kind, params)
	return Result{Kind: kind, OK: true}
}
