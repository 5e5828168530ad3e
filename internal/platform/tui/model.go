package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/game"
	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/session"
	"github.com/vovakirdan/notematch/internal/sound"
)

const submitTimeout = 3 * time.Second

// view is the screen currently shown.
type view int

const (
	viewLogin view = iota
	viewPlay
	viewEnd
	viewScores
)

// Options configures a Model. Zero fields take defaults.
type Options struct {
	// Engine is created from Config when nil.
	Engine      *game.Engine
	Config      config.Config
	Leaderboard leaderboard.Sink
	Player      sound.Player
	Clock       core.Clock
	Runtime     core.RuntimeConfig
	Team        string
	Difficulty  game.Difficulty
	// AutoStart skips the login screen when Team is set.
	AutoStart bool
	Theme     string
	Logger    *log.Logger
}

// Model is the Bubble Tea model for one player: login, board, end screen
// and leaderboard.
type Model struct {
	engine  *game.Engine
	gameCfg config.Config
	sink    leaderboard.Sink
	cues    sound.Cues
	clock   core.Clock
	config  core.RuntimeConfig
	theme   Theme
	keys    *KeyMapper
	log     *log.Logger

	view       view
	prev       view
	login      LoginModel
	scores     ScoreboardModel
	screen     *core.Screen
	inputFrame core.InputFrame
	difficulty game.Difficulty
	cursor     int
	popupUntil time.Time
	submitted  bool
	entry      *leaderboard.Entry
	submitErr  error
	quitting   bool
}

// NewModel creates the player model.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Engine == nil {
		opts.Engine = game.New(game.Options{
			Config: opts.Config,
			Clock:  opts.Clock,
			Seed:   opts.Runtime.SeedOrNow(),
			Logger: opts.Logger,
		})
	}
	if opts.Difficulty == "" {
		opts.Difficulty = game.Easy
	}

	m := Model{
		engine:     opts.Engine,
		gameCfg:    opts.Engine.Config(),
		sink:       opts.Leaderboard,
		cues:       sound.Cues{Player: opts.Player, Logger: opts.Logger},
		clock:      opts.Clock,
		config:     opts.Runtime,
		theme:      ThemeByName(opts.Theme),
		keys:       NewKeyMapper(),
		log:        opts.Logger,
		screen:     core.NewScreen(0, 0),
		inputFrame: core.NewInputFrame(),
		difficulty: opts.Difficulty,
	}
	m.login = NewLoginModel(m.gameCfg, opts.Team, opts.Difficulty, m.theme)
	m.login.width = opts.Runtime.ScreenW

	if opts.AutoStart && strings.TrimSpace(opts.Team) != "" {
		m.startGame(strings.TrimSpace(opts.Team), opts.Difficulty)
	}
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.login.Init(), tickCmd(m.config.TickRate))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.view == viewLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.login, _ = m.login.Update(msg)
	if m.view == viewScores {
		next, _ := m.scores.Update(msg)
		m.scores = next.(ScoreboardModel)
	}
	return m, nil
}

// handleKey routes keyboard input to the current screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case viewLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		switch {
		case m.login.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.login.WantsScoreboard():
			m.login.scores = false
			m.openScores()
		case m.login.Selected():
			m.login.selected = false
			m.startGame(m.login.Team(), m.login.Difficulty())
		}
		return m, cmd

	case viewPlay:
		if msg.String() == "ctrl+s" {
			m.saveScreenshot()
			return m, nil
		}
		if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
			m.quitting = true
			return m, tea.Quit
		}

	case viewEnd:
		switch m.keys.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.quitting = true
			return m, tea.Quit
		case MenuActionSelect, MenuActionBack:
			m.backToLogin()
		case MenuActionScoreboard:
			m.openScores()
		}

	case viewScores:
		next, cmd := m.scores.Update(msg)
		m.scores = next.(ScoreboardModel)
		switch {
		case m.scores.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.scores.IsGoingBack():
			m.view = m.prev
		}
		return m, cmd
	}

	return m, nil
}

// startGame deals a board for team at difficulty d and starts playing.
func (m *Model) startGame(team string, d game.Difficulty) {
	m.engine.ResetGame()
	m.engine.SetTeamID(team)
	if err := m.engine.InitGame(d); err != nil {
		m.log.Error("cannot start game", "team", team, "difficulty", d, "err", err)
		m.login.err = err.Error()
		return
	}
	m.engine.StartPlaying()

	m.difficulty = d
	m.view = viewPlay
	m.cursor = 0
	m.popupUntil = time.Time{}
	m.submitted = false
	m.entry = nil
	m.submitErr = nil
	m.inputFrame.Clear()
	m.log.Info("game started", "team", team, "difficulty", d)
}

// backToLogin resets the engine and shows the login form, keeping the team.
func (m *Model) backToLogin() {
	team := m.engine.TeamID()
	m.engine.ResetGame()
	m.login = NewLoginModel(m.gameCfg, team, m.difficulty, m.theme)
	m.login.width = m.config.ScreenW
	m.view = viewLogin
}

func (m *Model) openScores() {
	limit := m.gameCfg.Leaderboard.Limit
	m.scores = NewScoreboardModel(m.sink, limit, m.config.ScreenW, m.config.ScreenH)
	if m.entry != nil {
		m.scores.Highlight(m.entry.ID)
	}
	m.prev = m.view
	m.view = viewScores
}

// handleTick applies buffered input, advances the engine to the clock and
// reacts to what happened.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	now := m.clock.Now()

	if m.view == viewPlay {
		m.applyInput()
	}
	m.inputFrame.Clear()

	session.Step(m.engine, now)
	events := m.engine.DrainEvents()
	m.cues.Handle(events)

	for _, ev := range events {
		switch ev.Kind {
		case game.EventMatch:
			m.popupUntil = now.Add(m.gameCfg.PopupDuration)
		case game.EventLayerCleared:
			m.cursor = 0
		case game.EventGameEnded:
			m.finish()
		}
	}

	if snap := m.engine.Snapshot(); snap.LastMatched != nil && !now.Before(m.popupUntil) {
		m.engine.ClearLastMatched()
	}

	return m, tickCmd(m.config.TickRate)
}

// applyInput turns the buffered actions into cursor moves and flips.
func (m *Model) applyInput() {
	if m.inputFrame.Has(core.ActionRestart) || m.inputFrame.Has(core.ActionBack) {
		m.log.Info("game abandoned", "team", m.engine.TeamID())
		m.backToLogin()
		return
	}

	layer, ok := m.engine.Snapshot().ActiveLayer()
	if !ok {
		return
	}
	n := layer.GridSize
	row, col := m.cursor/n, m.cursor%n
	switch {
	case m.inputFrame.Has(core.ActionUp):
		row--
	case m.inputFrame.Has(core.ActionDown):
		row++
	}
	switch {
	case m.inputFrame.Has(core.ActionLeft):
		col--
	case m.inputFrame.Has(core.ActionRight):
		col++
	}
	row = core.Clamp(row, 0, n-1)
	col = core.Clamp(col, 0, n-1)
	m.cursor = row*n + col

	if m.inputFrame.Has(core.ActionFlip) || m.inputFrame.Has(core.ActionConfirm) {
		if t, ok := layer.Tile(row, col); ok {
			m.engine.Flip(t.ID)
		}
	}
}

// finish shows the end screen and records the result once.
func (m *Model) finish() {
	m.view = viewEnd
	if m.submitted {
		return
	}
	m.submitted = true

	snap := m.engine.Snapshot()
	rec := leaderboard.NewRecord(snap.TeamID, snap.ElapsedTime, snap.Moves)
	m.log.Info("game finished", "team", rec.TeamID, "moves", rec.Moves, "time", rec.TimeTaken, "score", rec.Score)
	if m.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	entry, err := m.sink.Submit(ctx, rec)
	if err != nil {
		m.log.Error("cannot save result", "err", err)
		m.submitErr = err
		return
	}
	m.entry = &entry
}

// saveScreenshot writes the current board as plain text.
func (m *Model) saveScreenshot() {
	snap := m.engine.Snapshot()
	m.renderBoard(snap)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".notematch", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("cannot create screenshot directory", "err", err)
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("board_%s.txt", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("cannot save screenshot", "err", err)
		return
	}
	m.log.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case viewLogin:
		content = m.login.View()
	case viewPlay:
		content = m.renderPlay()
	case viewEnd:
		content = m.renderEnd()
	case viewScores:
		return m.scores.View()
	}

	if m.config.ScreenW > 0 && m.config.ScreenH > 0 {
		return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

// renderBoard draws the active layer into the screen buffer. It returns
// false when no layer is active.
func (m Model) renderBoard(snap game.Snapshot) bool {
	layer, ok := snap.ActiveLayer()
	if !ok {
		m.screen.Resize(0, 0)
		return false
	}
	w, h := game.BoardSize(layer.GridSize)
	m.screen.Resize(w, h)
	m.screen.Clear()
	game.RenderLayer(m.screen, snap, 0, 0, m.cursor)
	return true
}

func (m Model) renderPlay() string {
	snap := m.engine.Snapshot()

	board := m.theme.PanelMuted.Render("All layers cleared!")
	if m.renderBoard(snap) {
		board = RenderScreen(m.screen)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, board, "   ", m.renderDiscovered(snap))

	popup := ""
	if snap.LastMatched != nil {
		popup = m.theme.Popup.Render(fmt.Sprintf("♪ %s matched!", snap.LastMatched.Name))
	}
	controls := m.theme.HUDControls.Render("Arrows/HJKL: Move  |  Space: Flip  |  R: Restart  |  Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHUD(snap), "", body, "", popup, controls)
}

func (m Model) renderHUD(snap game.Snapshot) string {
	sep := m.theme.HUDSeparator.Render("  │  ")
	field := func(label, value string) string {
		return m.theme.HUDLabel.Render(label+" ") + m.theme.HUDValue.Render(value)
	}

	total := len(snap.Layers)
	layer := min(snap.LayersCleared()+1, total)
	return strings.Join([]string{
		m.theme.HUDTitle.Render("NOTEMATCH"),
		field("Team", snap.TeamID),
		field("Moves", fmt.Sprint(snap.Moves)),
		field("Time", formatClock(snap.ElapsedTime)),
		field("Layer", fmt.Sprintf("%d/%d", layer, total)),
	}, sep)
}

// maxPanelNotes bounds the discovered-notes list.
const maxPanelNotes = 12

func (m Model) renderDiscovered(snap game.Snapshot) string {
	var b strings.Builder
	b.WriteString(m.theme.PanelTitle.Render(fmt.Sprintf("Discovered notes (%d)", len(snap.Discovered))))
	b.WriteString("\n")

	if len(snap.Discovered) == 0 {
		b.WriteString(m.theme.PanelMuted.Render("none yet"))
		return m.theme.PanelBorder.Render(b.String())
	}

	list := snap.Discovered
	if len(list) > maxPanelNotes {
		b.WriteString(m.theme.PanelMuted.Render(fmt.Sprintf("… %d earlier", len(list)-maxPanelNotes)))
		b.WriteString("\n")
		list = list[len(list)-maxPanelNotes:]
	}
	for i, n := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.PanelNote.Render(fmt.Sprintf("♪ %-4s", n.Name)))
		b.WriteString(m.theme.PanelMuted.Render(fmt.Sprintf(" %3d  %7.2f Hz", n.MIDI, n.Frequency)))
	}
	return m.theme.PanelBorder.Render(b.String())
}

func (m Model) renderEnd() string {
	snap := m.engine.Snapshot()

	names := make([]string, len(snap.Discovered))
	for i, n := range snap.Discovered {
		names[i] = n.Name
	}

	lines := []string{
		fmt.Sprintf("Team:             %s", snap.TeamID),
		fmt.Sprintf("Difficulty:       %s", snap.Difficulty),
		fmt.Sprintf("Layers cleared:   %d/%d", snap.LayersCleared(), len(snap.Layers)),
		fmt.Sprintf("Notes discovered: %d", len(snap.Discovered)),
		"  " + strings.Join(names, " "),
		fmt.Sprintf("Moves:            %d", snap.Moves),
		fmt.Sprintf("Time:             %s", formatClock(snap.ElapsedTime)),
		fmt.Sprintf("Score:            %.2f s/move", leaderboard.Score(snap.ElapsedTime, snap.Moves)),
	}

	status := ""
	switch {
	case m.entry != nil:
		status = m.theme.OverlayText.Render(fmt.Sprintf("Result saved to the leaderboard (#%d).", m.entry.ID))
	case m.submitErr != nil:
		status = m.theme.Error.Render("Result not saved: " + m.submitErr.Error())
	}

	overlay := m.theme.OverlayBorder.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.OverlayTitle.Render("ALL LAYERS CLEARED!"),
		"",
		m.theme.OverlayText.Render(strings.Join(lines, "\n")),
		"",
		status,
	))
	controls := m.theme.HUDControls.Render("Enter: Play again  |  Tab: Leaderboard  |  Q: Quit")
	return lipgloss.JoinVertical(lipgloss.Center, overlay, "", controls)
}

// Run starts the Bubble Tea program with a model built from opts.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
