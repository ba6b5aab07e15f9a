package tui

import (
	"github.com/charmbracelet/lipgloss"

	"zavaflow/internal/workflow"
)

type uiTheme struct {
	root         lipgloss.Style
	header       lipgloss.Style
	title        lipgloss.Style
	panel        lipgloss.Style
	panelFocus   lipgloss.Style
	panelTitle   lipgloss.Style
	footer       lipgloss.Style
	status       lipgloss.Style
	errorStatus  lipgloss.Style
	inputPanel   lipgloss.Style
	helpText     lipgloss.Style
	connector    lipgloss.Style
	node         map[workflow.Status]lipgloss.Style
	nodeGlyph    map[workflow.Status]string
	nodeBadge    lipgloss.Style
	itemCursor   lipgloss.Style
	itemSelected lipgloss.Style
	item         lipgloss.Style
	detailLabel  lipgloss.Style
	detailTag    lipgloss.Style
	userBubble   lipgloss.Style
	agentBubble  lipgloss.Style
	agentName    lipgloss.Style
	sourceLabel  lipgloss.Style
	sourceDoc    lipgloss.Style
	sourceKB     lipgloss.Style
	bold         lipgloss.Style
	italic       lipgloss.Style
	quickAction  lipgloss.Style
	quickKey     lipgloss.Style
	traceTime    lipgloss.Style
	traceKind    map[string]lipgloss.Style
}

func newTheme() uiTheme {
	teal := lipgloss.Color("#14b8a6")
	blue := lipgloss.Color("#3b82f6")
	amber := lipgloss.Color("#f59e0b")
	green := lipgloss.Color("#22c55e")
	violet := lipgloss.Color("#a78bfa")
	bg := lipgloss.Color("#0f172a")
	panelBg := lipgloss.Color("#111c33")
	text := lipgloss.Color("#e2e8f0")
	muted := lipgloss.Color("#94a3b8")
	dim := lipgloss.Color("#475569")

	nodeBase := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Align(lipgloss.Center)

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(teal).Bold(true),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1),
		panelFocus: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(teal).
			Bold(true),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1),
		helpText:  lipgloss.NewStyle().Foreground(muted),
		connector: lipgloss.NewStyle().Foreground(dim),
		node: map[workflow.Status]lipgloss.Style{
			workflow.StatusIdle:     nodeBase.BorderForeground(dim).Foreground(muted),
			workflow.StatusActive:   nodeBase.BorderForeground(amber).Foreground(amber).Bold(true),
			workflow.StatusComplete: nodeBase.BorderForeground(green).Foreground(text),
		},
		nodeGlyph: map[workflow.Status]string{
			workflow.StatusIdle:     "○",
			workflow.StatusActive:   "●",
			workflow.StatusComplete: "✓",
		},
		nodeBadge:    lipgloss.NewStyle().Foreground(violet),
		itemCursor:   lipgloss.NewStyle().Foreground(teal).Bold(true),
		itemSelected: lipgloss.NewStyle().Foreground(bg).Background(teal).Bold(true).Padding(0, 1),
		item:         lipgloss.NewStyle().Foreground(text).Padding(0, 1),
		detailLabel:  lipgloss.NewStyle().Foreground(muted).Bold(true),
		detailTag:    lipgloss.NewStyle().Foreground(violet),
		userBubble: lipgloss.NewStyle().
			Foreground(text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(blue).
			PaddingLeft(1),
		agentBubble: lipgloss.NewStyle().
			Foreground(text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(teal).
			PaddingLeft(1),
		agentName:   lipgloss.NewStyle().Foreground(teal).Bold(true),
		sourceLabel: lipgloss.NewStyle().Foreground(muted).Bold(true),
		sourceDoc:   lipgloss.NewStyle().Foreground(text).Underline(true),
		sourceKB:    lipgloss.NewStyle().Foreground(violet),
		bold:        lipgloss.NewStyle().Bold(true),
		italic:      lipgloss.NewStyle().Italic(true),
		quickAction: lipgloss.NewStyle().Foreground(text),
		quickKey:    lipgloss.NewStyle().Foreground(amber).Bold(true),
		traceTime:   lipgloss.NewStyle().Foreground(dim),
		traceKind: map[string]lipgloss.Style{
			"info":     lipgloss.NewStyle().Foreground(blue).Bold(true),
			"route":    lipgloss.NewStyle().Foreground(amber).Bold(true),
			"query":    lipgloss.NewStyle().Foreground(violet).Bold(true),
			"response": lipgloss.NewStyle().Foreground(green).Bold(true),
		},
	}
}
