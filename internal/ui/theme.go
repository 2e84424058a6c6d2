package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	Light = "light"
	Dark  = "dark"
	Mono  = "mono"
)

// Theme bundles styles, symbols and the box border.
// All render helpers pull from the current theme.
type Theme struct {
	Name string

	Title, Muted, Accent    lipgloss.Style
	Success, Error, Pending lipgloss.Style
	Selected, Done, Help    lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxChecked, BoxUnchecked string
	SymDone, SymCross        string
	SymPending               string
}

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

var themes = map[string]Theme{
	Light: {
		Name:     Light,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("250"),

		BoxChecked: "☑", BoxUnchecked: "☐",
		SymDone: "✔", SymCross: "✖", SymPending: "•",
	},
	Dark: {
		Name:     Dark,
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),

		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),

		BoxChecked: "☑", BoxUnchecked: "☐",
		SymDone: "✔", SymCross: "✖", SymPending: "•",
	},
	Mono: {
		Name:     Mono,
		Selected: lipgloss.NewStyle().Reverse(true),

		Border:      asciiBorder,
		BorderColor: lipgloss.NoColor{},

		BoxChecked: "[x]", BoxUnchecked: "[ ]",
		SymDone: "x", SymCross: "!", SymPending: "-",
	},
}

var current = themes[Dark]

// Lookup finds a theme by name, case-insensitively.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// SetTheme switches the current theme. Unknown names select dark.
func SetTheme(name string) Theme {
	t, ok := Lookup(name)
	if !ok {
		t = themes[Dark]
	}
	current = t
	return t
}

func Current() Theme { return current }
