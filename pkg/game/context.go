package game

import (
	"log/slog"

	"github.com/jwebster45206/interact-engine/pkg/world"
)

// Context bundles the world store and the external systems an evaluation
// runs against. A Context is passed explicitly into every evaluator and
// dispatcher call; there is no ambient global state, so independent
// entities can run with independent contexts.
type Context struct {
	World      world.Store
	Quests     QuestStore
	Inventory  InventoryStore
	Currency   CurrencyStore
	Reputation ReputationStore
	Blackboard Blackboard
	Perception PerceptionStore
	Schedule   ScheduleStore
	UI         UIHost
	Engine     EngineSignaler
	Memory     DialogMemory
	Social     SocialContext

	// Subject is the path of the entity being evaluated: the NPC whose
	// behavior tree is ticking, or the object whose state machine fires.
	Subject string

	Logger *slog.Logger
}

// Warn logs a non-fatal evaluation diagnostic. Safe on a nil logger.
func (c *Context) Warn(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, args...)
	}
}

// Debug logs evaluation detail. Safe on a nil logger.
func (c *Context) Debug(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}
