package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/interact-engine/internal/config"
	"github.com/jwebster45206/interact-engine/internal/storage"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config  *config.Config
	storage storage.Storage
	persist bool

	logViewport  viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int
	err          error

	// World selection state
	showWorldModal bool
	worlds         []string
	worldMap       map[string]string
	selectedWorld  int
	loadingWorlds  bool

	// Quit confirmation state
	showQuitModal bool

	game *gameSession
}

type worldsLoadedMsg struct {
	worlds   []string
	worldMap map[string]string
	err      error
}

type gameLoadedMsg struct {
	game *gameSession
	err  error
}

type timerElapsedMsg struct {
	machine string
}

type actionCompleteMsg struct {
	paths []string
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *config.Config, store storage.Storage, persist bool) ConsoleUI {
	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		storage:        store,
		persist:        persist,
		logViewport:    logVp,
		metaViewport:   metaVp,
		showWorldModal: true,
		loadingWorlds:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadWorlds()
}

func (m ConsoleUI) loadWorlds() tea.Cmd {
	return func() tea.Msg {
		listCtx, cancel := contextWithTimeout()
		defer cancel()
		worldMap, err := m.storage.ListWorlds(listCtx)
		if err != nil {
			return worldsLoadedMsg{nil, nil, err}
		}
		var names []string
		for name := range worldMap {
			names = append(names, name)
		}
		sort.Strings(names)
		return worldsLoadedMsg{names, worldMap, nil}
	}
}

func (m ConsoleUI) loadSelectedWorld() tea.Cmd {
	name := m.worlds[m.selectedWorld]
	filename := m.worldMap[name]
	return func() tea.Msg {
		g, err := loadGame(m.storage, name, filename, m.persist)
		return gameLoadedMsg{g, err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showWorldModal {
		return m.updateWorldModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		lvCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, lvCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(lvCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case timerElapsedMsg:
		if mach, ok := m.game.machines[msg.machine]; ok {
			m.game.ctx.Subject = msg.machine
			if mach.OnTimerElapsed(m.game.ctx) {
				m.game.log.add(eventStyle.Render(fmt.Sprintf("» %s is now %s", msg.machine, mach.Current())))
			}
		}
		m.refresh()

	case actionCompleteMsg:
		for _, path := range msg.paths {
			m.game.rt.NotifyActionComplete(path, true)
		}
		m.game.log.add(promptStyle.Render("(in-flight actions finished)"))
		m.refresh()
	}

	m.logViewport, lvCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(lvCmd, mvCmd)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.game

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.showQuitModal = true
		return m, nil

	case "d", "enter":
		if g.nav.Active() || len(g.npcs) == 0 {
			break
		}
		g.ctx.Subject = g.player
		if _, err := g.nav.StartConversation(g.npcs[0], g.ctx); err != nil {
			g.log.add(errorStyle.Render("Error: " + err.Error()))
		}

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if !g.nav.Active() {
			break
		}
		index := int(msg.String()[0] - '1')
		g.ctx.Subject = g.player
		ex, err := g.nav.SelectResponse(index, g.ctx)
		if err != nil {
			g.log.add(errorStyle.Render("Error: " + err.Error()))
			break
		}
		if ex != nil && ex.Ended {
			g.log.add(speakerStyle.Render(ex.Speaker+": ") + ex.Text)
			g.log.add(promptStyle.Render("(conversation ended)"))
		}

	case "x":
		if g.nav.Active() {
			g.nav.EndConversation()
			g.log.add(promptStyle.Render("(conversation abandoned)"))
		}

	case "o":
		cmd := m.fireMachines("interact")
		m.refresh()
		return m, cmd

	case "t":
		cmd := m.tickBrains()
		m.refresh()
		return m, cmd

	case "k":
		g.inventory.Give("chest_key", 1)
		g.log.add(userStyle.Render("You pocket a chest key."))

	case "e":
		for _, brain := range g.brains {
			subject := parentEntity(brain)
			detected := !g.percept.IsEntityDetected(subject, "hostile")
			g.percept.SetDetected(subject, "hostile", detected)
			g.log.add(userStyle.Render(fmt.Sprintf("hostile %s for %s", visibility(detected), subject)))
		}

	case "a":
		for _, brain := range g.brains {
			subject := parentEntity(brain)
			level := 0.8
			if g.percept.Alertness(subject) > 0 {
				level = 0
			}
			g.percept.SetAlertness(subject, level)
			g.log.add(userStyle.Render(fmt.Sprintf("alertness of %s set to %.1f", subject, level)))
		}
	}

	m.refresh()
	return m, nil
}

// fireMachines sends a trigger to every loaded state machine. A machine
// that lands in a timed state gets a timer scheduled for its duration.
func (m ConsoleUI) fireMachines(trigger string) tea.Cmd {
	var cmds []tea.Cmd
	for path, mach := range m.game.machines {
		m.game.ctx.Subject = path
		if !mach.Fire(trigger, m.game.ctx) {
			m.game.log.add(promptStyle.Render(fmt.Sprintf("(%s does not respond)", path)))
			continue
		}
		m.game.log.add(eventStyle.Render(fmt.Sprintf("» %s is now %s", path, mach.Current())))
		if d, ok := mach.StateDuration(); ok {
			machine := path
			cmds = append(cmds, tea.Tick(time.Duration(d*float64(time.Second)), func(time.Time) tea.Msg {
				return timerElapsedMsg{machine: machine}
			}))
		}
	}
	return tea.Batch(cmds...)
}

// tickBrains evaluates every entity behavior tree once. Actions left
// Running get a simulated completion scheduled shortly after, standing in
// for the engine finishing the movement or animation.
func (m ConsoleUI) tickBrains() tea.Cmd {
	for _, brain := range m.game.brains {
		m.game.ctx.Subject = parentEntity(brain)
		status := m.game.trees.Tick(brain, m.game.rt, m.game.ctx)
		m.game.log.add(promptStyle.Render(fmt.Sprintf("(%s tick: %s)", m.game.ctx.Subject, status)))
	}

	waiting := m.game.rt.Waiting()
	if len(waiting) == 0 {
		return nil
	}
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return actionCompleteMsg{paths: waiting}
	})
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

// refresh rebuilds both panels from the event log and the live systems.
func (m *ConsoleUI) refresh() {
	if m.game == nil {
		return
	}
	logWidth := m.logViewport.Width - 6
	if logWidth < 20 {
		logWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("INTERACT ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", logWidth)) + "\n\n")
	for _, line := range m.game.log.lines {
		content.WriteString(wordwrap.String(line, logWidth) + "\n")
	}
	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()

	m.metaViewport.SetContent(m.writeMetadata())
}

func (m *ConsoleUI) writeMetadata() string {
	g := m.game
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD STATE") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(shortID(g.sess.ID) + "\n")
	if !m.persist {
		content.WriteString(promptStyle.Render("(not persisted)") + "\n")
	}
	content.WriteString("\nWorld:\n" + g.worldName + "\n\n")

	content.WriteString(fmt.Sprintf("Gold: %d\n\n", g.wallet.Balance("gold")))

	content.WriteString("Inventory:\n")
	items := g.inventory.Items()
	if len(items) == 0 {
		content.WriteString("Empty\n")
	} else {
		names := make([]string, 0, len(items))
		for name := range items {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			content.WriteString(fmt.Sprintf("• %s ×%d\n", name, items[name]))
		}
	}
	content.WriteString("\n")

	content.WriteString("Quests:\n")
	states := g.quests.States()
	if len(states) == 0 {
		content.WriteString("None\n")
	} else {
		ids := make([]string, 0, len(states))
		for id := range states {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			content.WriteString(fmt.Sprintf("• %s: %s\n", id, states[id]))
		}
	}
	content.WriteString("\n")

	if len(g.machines) > 0 {
		content.WriteString("Machines:\n")
		paths := make([]string, 0, len(g.machines))
		for path := range g.machines {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			content.WriteString(fmt.Sprintf("• %s: %s\n", lastSegment(path), g.machines[path].Current()))
		}
		content.WriteString("\n")
	}

	if waiting := g.rt.Waiting(); len(waiting) > 0 {
		content.WriteString(fmt.Sprintf("In flight: %d\n\n", len(waiting)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• d: Talk\n")
	content.WriteString("• 1-9: Respond\n")
	content.WriteString("• x: Walk away\n")
	content.WriteString("• o: Interact\n")
	content.WriteString("• t: Tick AI\n")
	content.WriteString("• k: Take a key\n")
	content.WriteString("• e: Hostile on/off\n")
	content.WriteString("• a: Alert on/off\n")
	content.WriteString("• q: Quit\n")

	return content.String()
}

func (m ConsoleUI) updateWorldModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case worldsLoadedMsg:
		m.loadingWorlds = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.worlds = msg.worlds
			m.worldMap = msg.worldMap
			if len(m.worlds) == 0 {
				m.err = fmt.Errorf("no world files in %s", m.config.DataPath)
			}
		}

	case gameLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.game = msg.game
		m.showWorldModal = false
		m.ready = true
		m.resize()
		m.game.log.add(promptStyle.Render("Press d to talk, o to interact, t to tick the AI."))
		m.refresh()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if m.loadingWorlds || m.err != nil {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyUp:
			if m.selectedWorld > 0 {
				m.selectedWorld--
			}
		case tea.KeyDown:
			if m.selectedWorld < len(m.worlds)-1 {
				m.selectedWorld++
			}
		case tea.KeyEnter:
			if len(m.worlds) > 0 {
				m.loadingWorlds = true
				return m, m.loadSelectedWorld()
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m.saveAndQuit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m.saveAndQuit()
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) saveAndQuit() (tea.Model, tea.Cmd) {
	if m.persist && m.game != nil {
		// Quit on failure anyway; the session is a convenience, not a ledger.
		_ = m.game.save(m.storage)
	}
	return m, tea.Quit
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the World?"))
	content.WriteString("\n\n")
	if m.persist {
		content.WriteString("Your session will be saved.")
	} else {
		content.WriteString("Redis is unreachable; this session will be lost.")
	}
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderWorldModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loadingWorlds {
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Reading world files from " + m.config.DataPath))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a World"))
		content.WriteString("\n\n")
		for i, name := range m.worlds {
			if i == m.selectedWorld {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showWorldModal {
		return m.renderWorldModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		m.logViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

func visibility(detected bool) string {
	if detected {
		return "spotted"
	}
	return "lost"
}
