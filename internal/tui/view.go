package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zavaflow/internal/catalog"
	"zavaflow/internal/session"
	"zavaflow/internal/workflow"
)

const (
	sidebarWidth  = 30
	nodeWidth     = 18
	canvasHeight  = 17
	minChatWidth  = 36
	emptyTrace    = "Waiting for query execution..."
	emptyChat     = "Start a conversation"
	emptyChatHint = "Ask a question or press F1-F3 for a quick action"
)

func (m Model) View() string {
	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		m.renderCenter(),
		m.renderChat(),
	)
	footer := m.renderFooter()
	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

// layout returns the widths of the center and chat columns.
func (m *Model) layout() (center int, chat int) {
	usable := maxInt(60, m.width-4-sidebarWidth)
	chat = maxInt(minChatWidth, usable*2/5)
	center = maxInt(3*nodeWidth+8, usable-chat)
	return center, chat
}

// inTracePane reports whether screen column x falls in the center column,
// which holds the workflow canvas and the trace.
func (m *Model) inTracePane(x int) bool {
	center, _ := m.layout()
	// root padding plus the bordered sidebar
	start := 1 + sidebarWidth + 2
	return x >= start && x < start+center+2
}

func (m *Model) bodyHeight() int {
	return maxInt(canvasHeight+8, m.height-6)
}

func (m *Model) resize() {
	center, chat := m.layout()
	body := m.bodyHeight()
	m.traceView.Width = maxInt(20, center-4)
	m.traceView.Height = maxInt(3, body-canvasHeight-5)
	m.chat.Width = maxInt(20, chat-4)
	m.chat.Height = maxInt(4, body-10)
	m.input.Width = maxInt(10, chat-8)
}

func (m *Model) renderPanes() {
	m.traceView.SetContent(m.renderTrace())
	m.traceView.GotoBottom()
	m.chat.SetContent(m.renderMessages())
	m.chat.GotoBottom()
}

func (m Model) renderHeader() string {
	title := m.theme.title.Render("Zava · Agent Workflow")
	healthStyle := m.theme.status
	if !m.healthOK {
		healthStyle = m.theme.errorStatus
	}
	meta := m.theme.helpText.Render(" " + nullCoalesce(m.backendURL, "no backend") + " ")
	line := lipgloss.JoinHorizontal(lipgloss.Left, title, meta, healthStyle.Render(m.healthLine))
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(line)
}

func (m Model) renderFooter() string {
	help := "enter send · F1-F3 quick actions · tab sidebar · shift+↑/↓ scroll trace · ctrl+l clear trace · esc cancel/close · ctrl+c quit"
	status := m.theme.status.Render(m.statusLine)
	if strings.HasPrefix(m.statusLine, "error") {
		status = m.theme.errorStatus.Render(m.statusLine)
	}
	line := status + "  " + m.theme.helpText.Render(help)
	if n := len(m.logs); n > 0 {
		line += "\n" + m.theme.traceTime.Render(truncate(m.logs[n-1], maxInt(20, m.width-6)))
	}
	return m.theme.footer.Render(line)
}

func (m Model) renderSidebar() string {
	style := m.theme.panel
	if m.focus == focusSidebar {
		style = m.theme.panelFocus
	}
	var b strings.Builder
	b.WriteString(m.theme.panelTitle.Render("Agents") + "\n")
	agentsDone := false
	for i, item := range m.sidebarItems {
		if item.kbID != "" && !agentsDone {
			agentsDone = true
			b.WriteString("\n" + m.theme.panelTitle.Render("Knowledge Bases") + "\n")
		}
		cursor := "  "
		if m.focus == focusSidebar && i == m.sidebarIndex {
			cursor = m.theme.itemCursor.Render("› ")
		}
		selected := (item.agentID != "" && item.agentID == m.state.SelectedAgent) ||
			(item.kbID != "" && item.kbID == m.state.SelectedKB)
		itemStyle := m.theme.item
		if selected {
			itemStyle = m.theme.itemSelected
		}
		b.WriteString(cursor + itemStyle.Render(item.label) + "\n")
	}
	if details := m.renderDetails(); details != "" {
		b.WriteString("\n" + details)
	}
	return style.Width(sidebarWidth).Height(m.bodyHeight()).Render(b.String())
}

// renderDetails shows the selected agent or knowledge base, if any.
func (m Model) renderDetails() string {
	width := sidebarWidth - 4
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	section := func(label, value string) {
		b.WriteString(m.theme.detailLabel.Render(label) + "\n" + wrap.Render(value) + "\n")
	}
	tags := func(sources []string) string {
		rendered := make([]string, 0, len(sources))
		for _, ks := range sources {
			rendered = append(rendered, m.theme.detailTag.Render(ks))
		}
		return strings.Join(rendered, "\n")
	}

	if agent, ok := m.cat.Agent(m.state.SelectedAgent); ok {
		b.WriteString(m.theme.panelTitle.Render(agent.Name+"  ✕ esc") + "\n")
		b.WriteString(wrap.Render(agent.Description) + "\n")
		section("Model", agent.Model)
		if agent.ConnectedKB != "" {
			section("Connected KB", m.theme.detailTag.Render(agent.ConnectedKB))
		}
		if agent.RoutingOnly() {
			section("Knowledge Sources", "None (routing only)")
		} else {
			section("Knowledge Sources", tags(agent.KnowledgeSources))
		}
		return b.String()
	}
	if kb, ok := m.cat.KnowledgeBase(m.state.SelectedKB); ok {
		b.WriteString(m.theme.panelTitle.Render(kb.Name+"  ✕ esc") + "\n")
		b.WriteString(wrap.Render(kb.Description) + "\n")
		section("Model", kb.Model)
		section("Retrieval Mode", kb.RetrievalMode)
		section("Knowledge Sources", tags(kb.KnowledgeSources))
		return b.String()
	}
	return ""
}

func (m Model) renderCenter() string {
	center, _ := m.layout()
	canvas := m.theme.panel.Width(center).Height(canvasHeight).Render(
		m.theme.panelTitle.Render("Workflow") + "\n" + m.renderCanvas(center-4),
	)
	traceTitle := m.theme.panelTitle.Render("Execution Trace")
	if len(m.state.Trace) > 0 {
		traceTitle += m.theme.helpText.Render("  (ctrl+l clear)")
	}
	tracePanel := m.theme.panel.Width(center).Height(maxInt(4, m.bodyHeight()-canvasHeight-2)).Render(
		traceTitle + "\n" + m.traceView.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, canvas, tracePanel)
}

func (m Model) renderNode(node workflow.Node, title, meta string) string {
	status := workflow.NodeStatus(node, m.state.Phase)
	glyph := m.theme.nodeGlyph[status]
	if status == workflow.StatusActive {
		glyph = m.spinner.View()
	}
	body := glyph + " " + title
	if meta != "" {
		body += "\n" + m.theme.nodeBadge.Render(meta)
	}
	return m.theme.node[status].Width(nodeWidth).Render(body)
}

func (m Model) renderCanvas(width int) string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}
	orchestratorModel := ""
	if orch, ok := m.cat.Agent(string(workflow.NodeOrchestrator)); ok {
		orchestratorModel = orch.Model
	}
	agents := make([]string, 0, len(workflow.AgentNodes))
	for _, kind := range catalog.Specialists() {
		name := kind.ID()
		if agent, ok := m.cat.Agent(kind.ID()); ok {
			name = agent.Name
		}
		agents = append(agents, m.renderNode(workflow.Node(workflow.PhaseFor(kind)), name, kind.KnowledgeBase()))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, agents...)
	span := maxInt(3, lipgloss.Width(row)-nodeWidth)
	branch := "┌" + strings.Repeat("─", span/2-1) + "┼" + strings.Repeat("─", span-span/2-1) + "┐"
	merge := "└" + strings.Repeat("─", span/2-1) + "┼" + strings.Repeat("─", span-span/2-1) + "┘"

	lines := []string{
		center(m.renderNode(workflow.NodeInput, "User Input", "Text query")),
		center(m.theme.connector.Render("│")),
		center(m.renderNode(workflow.NodeOrchestrator, "Orchestrator", orchestratorModel)),
		center(m.theme.connector.Render(branch)),
		center(row),
		center(m.theme.connector.Render(merge)),
		center(m.renderNode(workflow.NodeOutput, "Response", "Grounded answer")),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTrace() string {
	if len(m.state.Trace) == 0 {
		return m.theme.helpText.Render(emptyTrace)
	}
	width := maxInt(20, m.traceView.Width)
	lines := make([]string, 0, len(m.state.Trace))
	for _, entry := range m.state.Trace {
		kindStyle, ok := m.theme.traceKind[string(entry.Kind)]
		if !ok {
			kindStyle = m.theme.helpText
		}
		prefix := m.theme.traceTime.Render(entry.Timestamp) + " " + kindStyle.Render(fmt.Sprintf("%-5s", entry.Kind.Label())) + " "
		lines = append(lines, prefix+truncate(entry.Message, maxInt(10, width-lipgloss.Width(prefix))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderChat() string {
	_, width := m.layout()
	status := m.theme.status.Render("Ready")
	if m.state.Busy {
		status = m.spinner.View() + " " + m.theme.status.Render("Processing...")
	}
	header := m.theme.panelTitle.Render("Chat") + "  " + status

	var quick strings.Builder
	for i, q := range m.cat.Questions() {
		key := m.theme.quickKey.Render(fmt.Sprintf("F%d", i+1))
		text := truncate(q.Text, maxInt(10, width-14))
		style := m.theme.quickAction
		if m.state.Busy {
			style = m.theme.helpText
		}
		quick.WriteString(key + " " + style.Render(text) + "\n")
	}

	inputStyle := m.theme.inputPanel
	if m.focus != focusInput {
		inputStyle = m.theme.panel
	}
	input := inputStyle.Width(width - 2).Render(m.input.View())

	body := header + "\n" + quick.String() + "\n" + m.chat.View()
	panel := m.theme.panel.Width(width).Height(maxInt(6, m.bodyHeight()-3)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, panel, input)
}

func (m Model) renderMessages() string {
	width := maxInt(20, m.chat.Width)
	if len(m.state.Messages) == 0 && !m.state.Busy {
		return m.theme.panelTitle.Render(emptyChat) + "\n" + m.theme.helpText.Render(emptyChatHint)
	}
	blocks := make([]string, 0, len(m.state.Messages)+1)
	for _, msg := range m.state.Messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	if m.state.Busy {
		blocks = append(blocks, m.theme.helpText.Render(m.spinner.View()+" "+m.state.LoadingText()))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg session.Message, width int) string {
	content := renderMarkup(msg.Display.Content, m.theme.bold, m.theme.italic)
	if msg.Role == session.RoleUser {
		return m.theme.userBubble.Width(width - 2).Render(content)
	}
	if !msg.Display.Header {
		return m.theme.agentBubble.Width(width - 2).Render(content)
	}
	var b strings.Builder
	b.WriteString(m.cat.Logo(msg.Display.Agent) + " " + m.theme.agentName.Render(msg.Display.Agent) + "\n")
	b.WriteString(content + "\n")
	b.WriteString(m.theme.sourceLabel.Render("Sources:"))
	for _, src := range msg.Display.Sources {
		if src.Synthetic {
			b.WriteString("\n  " + m.theme.sourceKB.Render(src.KnowledgeBase))
			continue
		}
		b.WriteString("\n  " + m.theme.sourceDoc.Render(src.Label) + " " + m.theme.sourceKB.Render("("+src.KnowledgeBase+")"))
	}
	return m.theme.agentBubble.Width(width - 2).Render(b.String())
}
