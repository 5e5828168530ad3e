package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/notematch/internal/config"
)

// LoginModel asks for a team id and a difficulty.
type LoginModel struct {
	input    textinput.Model
	items    []config.Difficulty
	presets  map[config.Difficulty]config.Preset
	cursor   int
	theme    Theme
	width    int
	err      string
	selected bool
	quitting bool
	scores   bool
}

// NewLoginModel creates a login form prefilled with team and difficulty d.
func NewLoginModel(cfg config.Config, team string, d config.Difficulty, theme Theme) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "team name"
	ti.Prompt = "Team: "
	ti.CharLimit = 32
	ti.Width = 24
	ti.SetValue(team)
	ti.Focus()

	m := LoginModel{
		input:   ti,
		presets: cfg.Difficulties,
		theme:   theme,
	}
	for _, diff := range config.Difficulties {
		if _, ok := cfg.Difficulties[diff]; ok {
			m.items = append(m.items, diff)
		}
	}
	for i, diff := range m.items {
		if diff == d {
			m.cursor = i
		}
	}
	return m
}

// Init starts the cursor blink.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login form. Letters go to the team
// field, so only non-printing keys navigate.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, nil
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "tab":
			m.scores = true
			return m, nil
		case "enter":
			if m.Team() == "" {
				m.err = "enter a team name to play"
				return m, nil
			}
			if len(m.items) == 0 {
				m.err = "no difficulty configured"
				return m, nil
			}
			m.err = ""
			m.selected = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the login form.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.MenuTitle.Render("N O T E M A T C H"))
	b.WriteString("\n")
	b.WriteString(m.theme.MenuDescription.Render("match the tiles, discover the notes"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, d := range m.items {
		p := m.presets[d]
		line := fmt.Sprintf("%-8s %d layers, %d tiles", d, len(p.Layers), p.TileCount())
		if i == m.cursor {
			b.WriteString(m.theme.MenuItemActive.Render("> " + line))
		} else {
			b.WriteString(m.theme.MenuItemNormal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Error.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HUDControls.Render("Up/Down: Difficulty  |  Enter: Play  |  Tab: Scores  |  Esc: Quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Team returns the trimmed team id.
func (m LoginModel) Team() string {
	return strings.TrimSpace(m.input.Value())
}

// Difficulty returns the highlighted difficulty.
func (m LoginModel) Difficulty() config.Difficulty {
	if len(m.items) == 0 {
		return ""
	}
	return m.items[m.cursor]
}

// Selected reports whether the form was submitted.
func (m LoginModel) Selected() bool {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m LoginModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the scoreboard.
func (m LoginModel) WantsScoreboard() bool {
	return m.scores
}
