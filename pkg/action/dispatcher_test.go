package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

func actionNode(store *world.MemoryStore, path string, props map[string]any) *world.Node {
	n := &world.Node{Path: path, Kind: world.KindAction, Props: props}
	store.AddTree(n)
	return n
}

func newTestContext() (*world.MemoryStore, *game.Context) {
	store := world.NewMemoryStore()
	return store, &game.Context{
		World:      store,
		Quests:     game.NewMemoryQuests(),
		Inventory:  game.NewMemoryInventory(),
		Currency:   game.NewMemoryWallet(),
		Reputation: game.NewMemoryReputation(),
		Blackboard: game.NewMemoryBlackboard(),
		Memory:     game.NewMemoryDialogMemory(),
		UI:         &game.RecordingUI{},
		Engine:     &game.RecordingEngine{},
		Subject:    "/Village/Guard",
	}
}

func TestExecute_QuestProgress(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	start := actionNode(store, "/a1", map[string]any{
		"type": "questProgress", "questId": "blacksmith_ore", "operation": "start",
	})
	res := d.Execute(start, ctx)
	assert.True(t, res.OK)
	assert.Equal(t, game.QuestStateActive, ctx.Quests.QuestState("blacksmith_ore"))

	complete := actionNode(store, "/a2", map[string]any{
		"type": "questProgress", "questId": "blacksmith_ore", "operation": "complete",
	})
	res = d.Execute(complete, ctx)
	assert.True(t, res.OK)
	assert.Equal(t, game.QuestStateCompleted, ctx.Quests.QuestState("blacksmith_ore"))

	bad := actionNode(store, "/a3", map[string]any{
		"type": "questProgress", "questId": "blacksmith_ore", "operation": "abandon",
	})
	assert.False(t, d.Execute(bad, ctx).OK)
}

func TestExecute_Items(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	give := actionNode(store, "/give", map[string]any{
		"type": "giveItem", "itemId": "healing_potion", "quantity": 2,
	})
	require.True(t, d.Execute(give, ctx).OK)
	assert.Equal(t, 2, ctx.Inventory.ItemQuantity("healing_potion"))

	remove := actionNode(store, "/remove", map[string]any{
		"type": "removeItem", "itemId": "healing_potion", "quantity": 1,
	})
	require.True(t, d.Execute(remove, ctx).OK)
	assert.Equal(t, 1, ctx.Inventory.ItemQuantity("healing_potion"))

	// Insufficient inventory: the action fails and nothing is removed.
	tooMany := actionNode(store, "/toomany", map[string]any{
		"type": "removeItem", "itemId": "healing_potion", "quantity": 5,
	})
	assert.False(t, d.Execute(tooMany, ctx).OK)
	assert.Equal(t, 1, ctx.Inventory.ItemQuantity("healing_potion"))
}

func TestExecute_CurrencyAndReputation(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	earn := actionNode(store, "/earn", map[string]any{
		"type": "modifyCurrency", "currency": "gold", "amount": 50,
	})
	require.True(t, d.Execute(earn, ctx).OK)
	assert.Equal(t, 50, ctx.Currency.(*game.MemoryWallet).Balance("gold"))

	// Overdraw fails.
	spend := actionNode(store, "/spend", map[string]any{
		"type": "modifyCurrency", "currency": "gold", "amount": -100,
	})
	assert.False(t, d.Execute(spend, ctx).OK)
	assert.Equal(t, 50, ctx.Currency.(*game.MemoryWallet).Balance("gold"))

	rep := actionNode(store, "/rep", map[string]any{
		"type": "modifyReputation", "faction": "merchants_guild", "amount": -5,
	})
	require.True(t, d.Execute(rep, ctx).OK)
	assert.Equal(t, -5, ctx.Reputation.(*game.MemoryReputation).Standing("merchants_guild"))
}

func TestExecute_OpenShopAndUnlock(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	shop := actionNode(store, "/shop", map[string]any{"type": "openShop", "shopId": "blacksmith_shop"})
	require.True(t, d.Execute(shop, ctx).OK)
	assert.Equal(t, []string{"blacksmith_shop"}, ctx.UI.(*game.RecordingUI).Shops)

	unlock := actionNode(store, "/unlock", map[string]any{"type": "unlockDialog", "dialogId": "secret_topic"})
	require.True(t, d.Execute(unlock, ctx).OK)
	assert.True(t, ctx.Memory.IsUnlocked("secret_topic"))
}

func TestExecute_SetBlackboard(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	set := actionNode(store, "/set", map[string]any{
		"type": "setBlackboard", "key": "alerted", "value": true,
	})
	require.True(t, d.Execute(set, ctx).OK)
	v, ok := ctx.Blackboard.Get("alerted")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestExecute_EngineSignals(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	patrol := actionNode(store, "/patrol", map[string]any{
		"type": "patrol", "route": "market_loop", "speed": 1.5,
	})
	require.True(t, d.Execute(patrol, ctx).OK)

	reinforce := actionNode(store, "/reinforce", map[string]any{
		"type": "callReinforcements", "radius": 30.0, "maxAllies": 3,
	})
	require.True(t, d.Execute(reinforce, ctx).OK)

	signals := ctx.Engine.(*game.RecordingEngine).Signals
	require.Len(t, signals, 2)
	assert.Equal(t, "patrol", signals[0].Kind)
	assert.Equal(t, "/Village/Guard", signals[0].Subject)
	assert.Equal(t, map[string]any{"route": "market_loop", "speed": 1.5}, signals[0].Params)
	assert.Equal(t, "callReinforcements", signals[1].Kind)
	assert.Equal(t, map[string]any{"radius": 30.0, "maxAllies": 3}, signals[1].Params)
}

func TestExecute_EngineSignalVariantParams(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	patrol := actionNode(store, "/patrol", map[string]any{
		"type": "patrol", "route": "market_loop",
	})
	patrol.Variants = []*world.VariantSet{{
		Axis: "alertLevel",
		Variants: []world.Variant{{
			Name:      "alerted",
			Overrides: map[string]any{"route": "perimeter_loop", "speed": 2.0},
		}},
	}}

	require.True(t, d.Execute(patrol, ctx).OK)
	require.True(t, store.SetVariantSelection(patrol, "alertLevel", "alerted"))
	require.True(t, d.Execute(patrol, ctx).OK)

	signals := ctx.Engine.(*game.RecordingEngine).Signals
	require.Len(t, signals, 2)
	assert.Equal(t, map[string]any{"route": "market_loop"}, signals[0].Params)
	// A parameter introduced only by the selected variant is forwarded too.
	assert.Equal(t, map[string]any{"route": "perimeter_loop", "speed": 2.0}, signals[1].Params)
}

func TestExecute_EndDialog(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	end := actionNode(store, "/end", map[string]any{"type": "endDialog"})
	res := d.Execute(end, ctx)
	assert.True(t, res.OK)
	assert.True(t, res.EndDialog)

	// endDialog carries no state of its own; dispatching twice is harmless.
	res = d.Execute(end, ctx)
	assert.True(t, res.EndDialog)
}

func TestExecute_UnknownKind(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	bad := actionNode(store, "/bad", map[string]any{"type": "teleport"})
	assert.False(t, d.Execute(bad, ctx).OK)

	untyped := actionNode(store, "/untyped", map[string]any{})
	assert.False(t, d.Execute(untyped, ctx).OK)
}

func TestExecuteAll_FailuresDoNotAbortSiblings(t *testing.T) {
	d := NewDispatcher()
	store, ctx := newTestContext()

	nodes := []*world.Node{
		actionNode(store, "/s1", map[string]any{"type": "removeItem", "itemId": "missing_item"}),
		actionNode(store, "/s2", map[string]any{"type": "giveItem", "itemId": "coin", "quantity": 1}),
		actionNode(store, "/s3", map[string]any{"type": "endDialog"}),
	}

	ended := d.ExecuteAll(nodes, ctx)
	assert.True(t, ended)
	// The failing first action did not stop the second from running.
	assert.Equal(t, 1, ctx.Inventory.ItemQuantity("coin"))
}
