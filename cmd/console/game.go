package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/interact-engine/internal/storage"
	"github.com/jwebster45206/interact-engine/pkg/action"
	"github.com/jwebster45206/interact-engine/pkg/behavior"
	"github.com/jwebster45206/interact-engine/pkg/condition"
	"github.com/jwebster45206/interact-engine/pkg/dialog"
	"github.com/jwebster45206/interact-engine/pkg/game"
	"github.com/jwebster45206/interact-engine/pkg/session"
	"github.com/jwebster45206/interact-engine/pkg/statemachine"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// eventLog receives the engine's UI callbacks and outbound signals and
// renders them as console lines. All calls happen on the UI goroutine.
type eventLog struct {
	lines []string
}

func (l *eventLog) add(line string) {
	l.lines = append(l.lines, line)
}

func (l *eventLog) ShowDialog(speaker, text string, responses []string) {
	l.add(speakerStyle.Render(speaker+": ") + text)
	for i, r := range responses {
		l.add(promptStyle.Render(fmt.Sprintf("  %d. ", i+1)) + r)
	}
}

func (l *eventLog) OpenShop(shopID string) {
	l.add(eventStyle.Render(fmt.Sprintf("» shop opened: %s", shopID)))
}

func (l *eventLog) Signal(subject, kind string, params map[string]any) {
	if len(params) == 0 {
		l.add(eventStyle.Render(fmt.Sprintf("» %s: %s", subject, kind)))
		return
	}
	l.add(eventStyle.Render(fmt.Sprintf("» %s: %s %v", subject, kind, params)))
}

var (
	_ game.UIHost         = (*eventLog)(nil)
	_ game.EngineSignaler = (*eventLog)(nil)
)

// gameSession is one loaded world plus the live systems evaluating
// against it.
type gameSession struct {
	worldName string
	sess      *session.Session
	ctx       *game.Context
	nav       *dialog.Navigator
	machines  map[string]*statemachine.Machine
	brains    []*world.Node // behavior roots, children of entities
	npcs      []string      // entities with a dialog tree
	player    string
	trees     *behavior.Evaluator
	rt        *behavior.Runtime
	log       *eventLog

	quests    *game.MemoryQuests
	inventory *game.MemoryInventory
	wallet    *game.MemoryWallet
	memory    *game.MemoryDialogMemory
	board     *game.MemoryBlackboard
	percept   *game.MemoryPerception
}

// loadGame builds a game session from a world file. When persist is set
// and a saved session exists for this world, machine states, blackboard
// contents and unlocked dialogs are restored from it.
func loadGame(store storage.Storage, worldName, filename string, persist bool) (*gameSession, error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := store.GetWorld(loadCtx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load world %s: %w", filename, err)
	}

	log := &eventLog{}
	g := &gameSession{
		worldName: worldName,
		log:       log,
		quests:    game.NewMemoryQuests(),
		inventory: game.NewMemoryInventory(),
		wallet:    game.NewMemoryWallet(),
		memory:    game.NewMemoryDialogMemory(),
		board:     game.NewMemoryBlackboard(),
		percept:   game.NewMemoryPerception(),
		machines:  make(map[string]*statemachine.Machine),
	}
	g.ctx = &game.Context{
		Logger:     slog.Default(),
		World:      ws,
		Quests:     g.quests,
		Inventory:  g.inventory,
		Currency:   g.wallet,
		Reputation: game.NewMemoryReputation(),
		Blackboard: g.board,
		Perception: g.percept,
		Schedule:   game.NewMemorySchedule(),
		UI:         log,
		Engine:     log,
		Memory:     g.memory,
		Social:     game.NewMemorySocial(),
	}

	conditions := condition.NewEvaluator()
	actions := action.NewDispatcher()
	g.nav = dialog.NewNavigator(conditions, actions, slog.Default())
	g.trees = behavior.NewEvaluator(conditions, actions)
	g.rt = behavior.NewRuntime()

	for _, path := range ws.Paths() {
		n, ok := ws.GetNode(path)
		if !ok {
			continue
		}
		switch n.Kind {
		case world.KindStateMachine:
			m, err := statemachine.Load(ws, path, actions)
			if err != nil {
				return nil, err
			}
			g.machines[path] = m
		case world.KindSelector, world.KindSequence:
			if parent, ok := ws.GetNode(world.ParentPath(path)); ok && parent.Kind == world.KindEntity {
				g.brains = append(g.brains, n)
			}
		case world.KindEntity:
			if len(ws.RelationshipTargets(n, "dialogTree")) > 0 {
				g.npcs = append(g.npcs, path)
			}
			if n.Name() == "Player" {
				g.player = path
			}
		}
	}
	sort.Strings(g.npcs)

	// The session id is stable per world, so a console restart resumes
	// where it left off.
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("interact-console/"+worldName))
	g.sess = session.NewSession()
	g.sess.ID = id

	if persist {
		if saved, err := store.LoadSession(loadCtx, id); err == nil && saved != nil {
			g.restore(saved)
		}
	}
	return g, nil
}

func (g *gameSession) restore(saved *session.Session) {
	g.sess = saved
	for path, state := range saved.Machines {
		if m, ok := g.machines[path]; ok {
			m.Restore(state)
		}
	}
	g.board.Restore(saved.Blackboard)
	for _, id := range saved.UnlockedDialogs {
		g.memory.Unlock(id)
	}
	g.log.add(loadingStyle.Render(fmt.Sprintf("resumed session %s", shortID(saved.ID))))
}

// snapshot copies the live runtime state back into the session record.
func (g *gameSession) snapshot() *session.Session {
	for path, m := range g.machines {
		g.sess.SetMachineState(path, m.Current())
	}
	g.sess.Blackboard = g.board.Snapshot()
	g.sess.UnlockedDialogs = g.memory.Unlocked()
	g.sess.UpdatedAt = time.Now()
	return g.sess
}

func (g *gameSession) save(store storage.Storage) error {
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.SaveSession(saveCtx, g.sess.ID, g.snapshot())
}

func shortID(id uuid.UUID) string {
	return id.String()[:8] + "..."
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func parentEntity(n *world.Node) string {
	return world.ParentPath(n.Path)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
