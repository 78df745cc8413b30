package game

import "sync"

// In-memory implementations of the external system interfaces. Tests and
// the console demo use these; a real host wires its own systems instead.

// MemoryQuests tracks quest states in a map. Unknown quests are inactive.
type MemoryQuests struct {
	mu     sync.RWMutex
	states map[string]string
}

var _ QuestStore = (*MemoryQuests)(nil)

func NewMemoryQuests() *MemoryQuests {
	return &MemoryQuests{states: make(map[string]string)}
}

func (q *MemoryQuests) QuestState(questID string) string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if s, ok := q.states[questID]; ok {
		return s
	}
	return QuestStateInactive
}

// States copies the known quest states, for display.
func (q *MemoryQuests) States() map[string]string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make(map[string]string, len(q.states))
	for k, v := range q.states {
		out[k] = v
	}
	return out
}

func (q *MemoryQuests) SetQuestState(questID, state string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.states[questID] = state
}

func (q *MemoryQuests) Progress(questID, operation string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch operation {
	case QuestOpStart:
		q.states[questID] = QuestStateActive
	case QuestOpUpdateObjective:
		// Objective bookkeeping is host-specific; the in-memory store
		// only requires the quest to be active.
		if q.states[questID] != QuestStateActive {
			return false
		}
	case QuestOpComplete:
		q.states[questID] = QuestStateCompleted
	case QuestOpReset:
		delete(q.states, questID)
	default:
		return false
	}
	return true
}

// MemoryInventory tracks item quantities.
type MemoryInventory struct {
	mu    sync.RWMutex
	items map[string]int
}

var _ InventoryStore = (*MemoryInventory)(nil)

func NewMemoryInventory() *MemoryInventory {
	return &MemoryInventory{items: make(map[string]int)}
}

func (inv *MemoryInventory) ItemQuantity(itemID string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.items[itemID]
}

// Items copies the item quantities, for display and persistence.
func (inv *MemoryInventory) Items() map[string]int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make(map[string]int, len(inv.items))
	for k, v := range inv.items {
		out[k] = v
	}
	return out
}

func (inv *MemoryInventory) Give(itemID string, quantity int) {
	if quantity <= 0 {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.items[itemID] += quantity
}

func (inv *MemoryInventory) Remove(itemID string, quantity int) bool {
	if quantity <= 0 {
		return true
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.items[itemID] < quantity {
		return false
	}
	inv.items[itemID] -= quantity
	if inv.items[itemID] == 0 {
		delete(inv.items, itemID)
	}
	return true
}

// MemoryWallet tracks currency balances. Balances never go negative.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[string]int
}

var _ CurrencyStore = (*MemoryWallet)(nil)

func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]int)}
}

func (w *MemoryWallet) Balance(currency string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[currency]
}

func (w *MemoryWallet) Modify(currency string, amount int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[currency]+amount < 0 {
		return false
	}
	w.balances[currency] += amount
	return true
}

// MemoryReputation tracks faction standing.
type MemoryReputation struct {
	mu       sync.Mutex
	standing map[string]int
}

var _ ReputationStore = (*MemoryReputation)(nil)

func NewMemoryReputation() *MemoryReputation {
	return &MemoryReputation{standing: make(map[string]int)}
}

func (r *MemoryReputation) Standing(faction string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.standing[faction]
}

func (r *MemoryReputation) Modify(faction string, amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.standing[faction] += amount
}

// MemoryBlackboard is a per-entity scratch store.
type MemoryBlackboard struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ Blackboard = (*MemoryBlackboard)(nil)

func NewMemoryBlackboard() *MemoryBlackboard {
	return &MemoryBlackboard{values: make(map[string]any)}
}

func (b *MemoryBlackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

func (b *MemoryBlackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
}

// Snapshot copies the blackboard contents, for persistence.
func (b *MemoryBlackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Restore replaces the blackboard contents from a snapshot.
func (b *MemoryBlackboard) Restore(values map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string]any, len(values))
	for k, v := range values {
		b.values[k] = v
	}
}

// MemoryPerception reports scripted detections and alertness levels.
type MemoryPerception struct {
	mu        sync.RWMutex
	detected  map[string]map[string]bool // sourceRef -> entityType -> detected
	alertness map[string]float64
}

var _ PerceptionStore = (*MemoryPerception)(nil)

func NewMemoryPerception() *MemoryPerception {
	return &MemoryPerception{
		detected:  make(map[string]map[string]bool),
		alertness: make(map[string]float64),
	}
}

func (p *MemoryPerception) SetDetected(sourceRef, entityType string, detected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detected[sourceRef] == nil {
		p.detected[sourceRef] = make(map[string]bool)
	}
	p.detected[sourceRef][entityType] = detected
}

func (p *MemoryPerception) SetAlertness(sourceRef string, level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alertness[sourceRef] = level
}

func (p *MemoryPerception) IsEntityDetected(sourceRef, entityType string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.detected[sourceRef][entityType]
}

func (p *MemoryPerception) Alertness(sourceRef string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alertness[sourceRef]
}

// MemorySchedule reports scripted activities.
type MemorySchedule struct {
	mu         sync.RWMutex
	activities map[string]string
}

var _ ScheduleStore = (*MemorySchedule)(nil)

func NewMemorySchedule() *MemorySchedule {
	return &MemorySchedule{activities: make(map[string]string)}
}

func (s *MemorySchedule) SetActivity(sourceRef, activity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[sourceRef] = activity
}

func (s *MemorySchedule) CurrentActivity(sourceRef string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities[sourceRef]
}

// MemoryDialogMemory tracks unlocked dialogs and visited nodes.
type MemoryDialogMemory struct {
	mu       sync.RWMutex
	unlocked map[string]bool
	visited  map[string]int
}

var _ DialogMemory = (*MemoryDialogMemory)(nil)

func NewMemoryDialogMemory() *MemoryDialogMemory {
	return &MemoryDialogMemory{
		unlocked: make(map[string]bool),
		visited:  make(map[string]int),
	}
}

func (m *MemoryDialogMemory) Unlock(dialogID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked[dialogID] = true
}

func (m *MemoryDialogMemory) IsUnlocked(dialogID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked[dialogID]
}

func (m *MemoryDialogMemory) MarkVisited(nodePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visited[nodePath]++
}

func (m *MemoryDialogMemory) TimesVisited(nodePath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visited[nodePath]
}

// Unlocked lists unlocked dialog ids, for persistence.
func (m *MemoryDialogMemory) Unlocked() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.unlocked))
	for id := range m.unlocked {
		out = append(out, id)
	}
	return out
}

// MemorySocial returns fixed axis values (e.g. relationship, playerStatus)
// regardless of NPC.
type MemorySocial struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ SocialContext = (*MemorySocial)(nil)

func NewMemorySocial() *MemorySocial {
	return &MemorySocial{values: make(map[string]string)}
}

func (s *MemorySocial) SetAxisValue(axis, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[axis] = value
}

func (s *MemorySocial) AxisValue(axis, npcPath string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[axis]
}

// RecordingUI captures ShowDialog and OpenShop calls for tests.
type RecordingUI struct {
	mu      sync.Mutex
	Dialogs []RecordedDialog
	Shops   []string
}

// RecordedDialog is one captured ShowDialog call.
type RecordedDialog struct {
	Speaker   string
	Text      string
	Responses []string
}

var _ UIHost = (*RecordingUI)(nil)

func (u *RecordingUI) ShowDialog(speaker, text string, responses []string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Dialogs = append(u.Dialogs, RecordedDialog{Speaker: speaker, Text: text, Responses: responses})
}

func (u *RecordingUI) OpenShop(shopID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Shops = append(u.Shops, shopID)
}

// RecordingEngine captures engine signals for tests.
type RecordingEngine struct {
	mu      sync.Mutex
	Signals []RecordedSignal
}

// RecordedSignal is one captured engine signal.
type RecordedSignal struct {
	Subject string
	Kind    string
	Params  map[string]any
}

var _ EngineSignaler = (*RecordingEngine)(nil)

func (e *RecordingEngine) Signal(subject, kind string, params map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Signals = append(e.Signals, RecordedSignal{Subject: subject, Kind: kind, Params: params})
}
