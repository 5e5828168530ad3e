package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme contains all configurable visual styles outside the tile grid.
type Theme struct {
	// HUD styles
	HUDTitle     lipgloss.Style
	HUDLabel     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Discovered-notes panel
	PanelBorder lipgloss.Style
	PanelTitle  lipgloss.Style
	PanelNote   lipgloss.Style
	PanelMuted  lipgloss.Style

	// Match popup
	Popup lipgloss.Style

	// Overlay styles (end screen)
	OverlayBorder lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayText   lipgloss.Style

	// Login screen
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
	Error           lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
		PanelNote:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		PanelMuted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),

		Popup: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 2),

		OverlayBorder: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(1, 4),
		OverlayTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		OverlayText:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),

		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:           lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without color.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	theme.HUDTitle = lipgloss.NewStyle().Bold(true)
	theme.PanelTitle = lipgloss.NewStyle().Bold(true)
	theme.PanelNote = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	theme.Popup = lipgloss.NewStyle().Reverse(true).Bold(true).Padding(0, 2)
	theme.OverlayBorder = theme.OverlayBorder.BorderForeground(lipgloss.Color("250"))
	theme.OverlayTitle = lipgloss.NewStyle().Bold(true)
	theme.MenuTitle = lipgloss.NewStyle().Bold(true)
	theme.MenuItemActive = lipgloss.NewStyle().Reverse(true)
	theme.Error = lipgloss.NewStyle().Underline(true)
	return theme
}

// ThemeByName returns a named theme; unknown names get the default.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "mono", "monochrome":
		return MonochromeTheme()
	}
	return DefaultTheme()
}
