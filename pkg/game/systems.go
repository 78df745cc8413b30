package game

// Narrow interfaces to the external game systems the engine evaluates
// against. The engine never owns this state; hosts plug in their own
// implementations, and serialize concurrent access on their side.

// Quest state tokens used by quest conditions and questProgress actions.
const (
	QuestStateInactive  = "inactive"
	QuestStateActive    = "active"
	QuestStateCompleted = "completed"
)

// Quest progress operations accepted by Progress.
const (
	QuestOpStart           = "start"
	QuestOpUpdateObjective = "updateObjective"
	QuestOpComplete        = "complete"
	QuestOpReset           = "reset"
)

// QuestStore reads and advances quest state.
type QuestStore interface {
	QuestState(questID string) string
	// Progress applies one of the QuestOp operations. Unknown operations
	// return false.
	Progress(questID, operation string) bool
}

// InventoryStore reads and mutates item quantities.
type InventoryStore interface {
	ItemQuantity(itemID string) int
	Give(itemID string, quantity int)
	// Remove returns false without mutating when fewer than quantity are held.
	Remove(itemID string, quantity int) bool
}

// CurrencyStore adjusts a named currency balance. Modify returns false
// when a negative amount would overdraw the balance.
type CurrencyStore interface {
	Modify(currency string, amount int) bool
}

// ReputationStore adjusts standing with a faction.
type ReputationStore interface {
	Modify(faction string, amount int)
}

// Blackboard is a per-entity key/value scratch store used for AI
// signaling across ticks. Keys and value types are caller-defined.
type Blackboard interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// PerceptionStore exposes an entity's senses.
type PerceptionStore interface {
	IsEntityDetected(sourceRef, entityType string) bool
	Alertness(sourceRef string) float64
}

// ScheduleStore reports what an entity is currently scheduled to do.
type ScheduleStore interface {
	CurrentActivity(sourceRef string) string
}

// UIHost receives dialog and shop presentation signals.
type UIHost interface {
	ShowDialog(speaker, text string, responses []string)
	OpenShop(shopID string)
}

// EngineSignaler receives fire-and-forget engine signals (animation,
// combat, movement, lookAt, patrol, callReinforcements). The subject is
// the entity the signal applies to; params carry the action's properties.
type EngineSignaler interface {
	Signal(subject, kind string, params map[string]any)
}

// DialogMemory is the conversation memory: which dialogs have been
// unlocked and which dialog nodes have been visited.
type DialogMemory interface {
	Unlock(dialogID string)
	IsUnlocked(dialogID string) bool
	MarkVisited(nodePath string)
	TimesVisited(nodePath string) int
}

// SocialContext supplies the value for a dialog variant axis, e.g. the
// player's relationship with an NPC ("stranger", "friend") or the
// player's current status ("normal", "wounded").
type SocialContext interface {
	AxisValue(axis, npcPath string) string
}
