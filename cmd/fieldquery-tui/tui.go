package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tabID int

const (
	tabQuery tabID = iota
	tabHistory
	tabHelp
)

const tabCount = 3

type queryPhase int

const (
	phaseIdle queryPhase = iota
	phaseSubmitting
)

type model struct {
	cfg       appConfig
	gateway   gatewayClient
	sessionID string

	// Query lifecycle. querySeq stamps each submission; a settled response
	// whose stamp no longer matches is stale and gets dropped.
	phase    queryPhase
	querySeq int

	result      *queryResult
	display     displayModel
	errMsg      string
	showDetails bool

	health       systemStatus
	history      historyLedger
	historyIndex int
	examples     []exampleQuery
	exampleIndex int

	activeTab   tabID
	statusLine  string
	logs        []string
	quitConfirm bool

	width  int
	height int

	input       textinput.Model
	answerPane  viewport.Model
	historyPane viewport.Model
	spinner     spinner.Model

	theme uiTheme
}

type healthMsg systemStatus

type healthTickMsg time.Time

type queryDoneMsg struct {
	seq      int
	question string
	result   queryResult
	err      error
}

type examplesMsg struct {
	examples []exampleQuery
	err      error
}

type uiTheme struct {
	root          lipgloss.Style
	header        lipgloss.Style
	tabActive     lipgloss.Style
	tabInactive   lipgloss.Style
	panel         lipgloss.Style
	panelTitle    lipgloss.Style
	footer        lipgloss.Style
	status        lipgloss.Style
	errorStatus   lipgloss.Style
	inputPanel    lipgloss.Style
	helpText      lipgloss.Style
	answerText    lipgloss.Style
	questionText  lipgloss.Style
	selectedEntry lipgloss.Style
	toolBadge     lipgloss.Style
	healthOK      lipgloss.Style
	healthBad     lipgloss.Style
	healthWait    lipgloss.Style
	confidence    map[visualWeight]lipgloss.Style
	modalFrame    lipgloss.Style
	modalAction   lipgloss.Style
}

func newTheme() uiTheme {
	olive := lipgloss.Color("#8a9a5b")
	sand := lipgloss.Color("#d8c9a3")
	amber := lipgloss.Color("#e0a530")
	rust := lipgloss.Color("#c25b4e")
	bg := lipgloss.Color("#14160f")
	panelBg := lipgloss.Color("#1d2014")
	text := lipgloss.Color("#ece8d9")
	muted := lipgloss.Color("#8f927e")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(olive).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(olive).
			Foreground(lipgloss.Color("#14160f")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#2a2d1e")).
			Foreground(muted).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(olive).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(sand).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(sand).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(olive).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(rust).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		helpText:      lipgloss.NewStyle().Foreground(muted),
		answerText:    lipgloss.NewStyle().Foreground(text),
		questionText:  lipgloss.NewStyle().Foreground(sand).Bold(true),
		selectedEntry: lipgloss.NewStyle().Foreground(lipgloss.Color("#14160f")).Background(sand).Bold(true),
		toolBadge:     lipgloss.NewStyle().Foreground(amber).Bold(true),
		healthOK:      lipgloss.NewStyle().Foreground(olive).Bold(true),
		healthBad:     lipgloss.NewStyle().Foreground(rust).Bold(true),
		healthWait:    lipgloss.NewStyle().Foreground(muted),
		confidence: map[visualWeight]lipgloss.Style{
			weightHigh:    lipgloss.NewStyle().Foreground(olive).Bold(true),
			weightMedium:  lipgloss.NewStyle().Foreground(amber).Bold(true),
			weightLow:     lipgloss.NewStyle().Foreground(rust).Bold(true),
			weightNeutral: lipgloss.NewStyle().Foreground(muted),
		},
		modalFrame: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(rust).
			Padding(1, 2),
		modalAction: lipgloss.NewStyle().Foreground(amber).Bold(true),
	}
}

func newModel(cfg appConfig) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Ask about military procedures or request document generation..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0a530"))

	answerPane := viewport.New(0, 0)
	answerPane.MouseWheelEnabled = true
	answerPane.MouseWheelDelta = 4
	historyPane := viewport.New(0, 0)
	historyPane.MouseWheelEnabled = true
	historyPane.MouseWheelDelta = 4

	return model{
		cfg:         cfg,
		gateway:     newGatewayClient(cfg.apiBase, cfg.requestTimeout),
		sessionID:   newSessionID(),
		phase:       phaseIdle,
		health:      systemStatus{State: healthUnknown},
		activeTab:   tabQuery,
		statusLine:  "starting...",
		logs:        []string{},
		input:       input,
		answerPane:  answerPane,
		historyPane: historyPane,
		spinner:     sp,
		theme:       newTheme(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.checkHealthCmd(),
		m.fetchExamplesCmd(),
		healthTickEvery(m.cfg.healthInterval),
	)
}

func (m model) checkHealthCmd() tea.Cmd {
	gateway := m.gateway
	return func() tea.Msg {
		return healthMsg(gateway.checkHealth())
	}
}

func healthTickEvery(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return healthTickMsg(t)
	})
}

func (m model) submitCmd(seq int, question string) tea.Cmd {
	gateway := m.gateway
	req := queryRequest{Question: question, SessionID: m.sessionID}
	return func() tea.Msg {
		result, err := gateway.submitQuery(req)
		return queryDoneMsg{seq: seq, question: question, result: result, err: err}
	}
}

func (m model) fetchExamplesCmd() tea.Cmd {
	gateway := m.gateway
	return func() tea.Msg {
		examples, err := gateway.fetchExamples()
		return examplesMsg{examples: examples, err: err}
	}
}

// beginSubmit is the single entry into the Submitting phase; both the enter
// key and history replay funnel through it. It is a no-op when a submission
// is already in flight or the trimmed input is empty, so no validation error
// ever needs reporting.
func (m *model) beginSubmit() tea.Cmd {
	if m.phase == phaseSubmitting {
		return nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}
	m.phase = phaseSubmitting
	m.errMsg = ""
	m.result = nil
	m.display = displayModel{}
	m.querySeq++
	m.statusLine = "processing query..."
	m.renderPanes()
	return m.submitCmd(m.querySeq, question)
}

func (m *model) replayEntry(index int) tea.Cmd {
	question, ok := m.history.replay(index)
	if !ok {
		return nil
	}
	m.activeTab = tabQuery
	m.input.Focus()
	m.input.SetValue(question)
	return m.beginSubmit()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case healthMsg:
		// Unconditional overwrite: health is advisory and never gates queries.
		m.health = systemStatus(msg)
	case healthTickMsg:
		cmds = append(cmds, m.checkHealthCmd(), healthTickEvery(m.cfg.healthInterval))
	case examplesMsg:
		if msg.err != nil {
			m.appendLog("examples unavailable: " + compactSingleLine(msg.err.Error(), 120))
			break
		}
		m.examples = msg.examples
	case queryDoneMsg:
		if msg.seq != m.querySeq {
			m.appendLog("discarded stale response for: " + compactSingleLine(msg.question, 60))
			break
		}
		m.phase = phaseIdle
		if msg.err != nil {
			m.errMsg = userMessage(msg.err)
			m.statusLine = "query failed"
			m.appendLog("query failed: " + compactSingleLine(msg.err.Error(), 160))
			m.renderPanes()
			break
		}
		result := msg.result
		m.result = &result
		m.display = normalizeResult(result)
		m.history.append(newHistoryEntry(msg.question, result))
		m.historyIndex = 0
		m.input.SetValue("")
		m.statusLine = "answer ready"
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.quitConfirm {
			break
		}
		switch m.activeTab {
		case tabQuery:
			var cmd tea.Cmd
			m.answerPane, cmd = m.answerPane.Update(msg)
			cmds = append(cmds, cmd)
		case tabHistory:
			var cmd tea.Cmd
			m.historyPane, cmd = m.historyPane.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.quitConfirm {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			case "n", "N", "esc":
				m.quitConfirm = false
				m.statusLine = "quit canceled"
			}
			return m, tea.Batch(cmds...)
		}
		switch msg.String() {
		case "tab":
			m.setTab((m.activeTab + 1) % tabCount)
			return m, tea.Batch(cmds...)
		case "shift+tab":
			m.setTab((m.activeTab + tabCount - 1) % tabCount)
			return m, tea.Batch(cmds...)
		}

		switch m.activeTab {
		case tabQuery:
			switch msg.String() {
			case "enter":
				if cmd := m.beginSubmit(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			case "esc":
				if m.errMsg != "" {
					m.errMsg = ""
					m.statusLine = "error dismissed"
					m.renderPanes()
					return m, tea.Batch(cmds...)
				}
				m.beginQuitConfirm()
				return m, tea.Batch(cmds...)
			case "ctrl+s":
				m.showDetails = !m.showDetails
				m.statusLine = "source details " + onOff(m.showDetails)
				m.renderPanes()
				return m, tea.Batch(cmds...)
			case "ctrl+e":
				if len(m.examples) > 0 {
					example := m.examples[m.exampleIndex%len(m.examples)]
					m.exampleIndex++
					m.input.SetValue(example.Query)
					m.input.CursorEnd()
					m.statusLine = "example: " + example.Category
				}
				return m, tea.Batch(cmds...)
			case "pgup":
				m.answerPane.LineUp(8)
				return m, tea.Batch(cmds...)
			case "pgdown":
				m.answerPane.LineDown(8)
				return m, tea.Batch(cmds...)
			case "up":
				if strings.TrimSpace(m.input.Value()) == "" {
					m.answerPane.LineUp(4)
					return m, tea.Batch(cmds...)
				}
			case "down":
				if strings.TrimSpace(m.input.Value()) == "" {
					m.answerPane.LineDown(4)
					return m, tea.Batch(cmds...)
				}
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		case tabHistory:
			switch msg.String() {
			case "up", "k":
				m.historyIndex = maxInt(0, m.historyIndex-1)
				m.renderPanes()
			case "down", "j":
				m.historyIndex = minInt(maxInt(0, m.history.size()-1), m.historyIndex+1)
				m.renderPanes()
			case "enter", "r":
				if cmd := m.replayEntry(m.historyIndex); cmd != nil {
					m.renderPanes()
					cmds = append(cmds, cmd)
				}
			case "c":
				m.history.clear()
				m.historyIndex = 0
				m.statusLine = "history cleared"
				m.renderPanes()
			case "esc":
				m.setTab(tabQuery)
			case "pgup":
				m.historyPane.LineUp(8)
			case "pgdown":
				m.historyPane.LineDown(8)
			}
		case tabHelp:
			if msg.String() == "esc" {
				m.setTab(tabQuery)
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *model) setTab(tab tabID) {
	m.activeTab = tab
	if tab == tabQuery {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.renderPanes()
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	m.statusLine = "confirm quit"
}

func (m model) View() string {
	header := m.renderHeader()
	content := m.renderContent()
	input := m.renderInput()
	footer := m.renderFooter()
	out := lipgloss.JoinVertical(lipgloss.Left, header, content, input, footer)
	if m.quitConfirm {
		out = m.renderQuitModal()
	}
	return m.theme.root.Render(out)
}

func (m *model) healthIndicator() string {
	switch m.health.State {
	case healthHealthy:
		return m.theme.healthOK.Render("● System Ready")
	case healthDegraded:
		label := "● System Issues"
		if strings.TrimSpace(m.health.Message) != "" {
			label += " · " + compactSingleLine(m.health.Message, 40)
		}
		return m.theme.healthBad.Render(label)
	default:
		return m.theme.healthWait.Render("○ Checking...")
	}
}

func (m *model) renderHeader() string {
	tabs := []struct {
		id    tabID
		label string
	}{
		{tabQuery, "Ask Question"},
		{tabHistory, fmt.Sprintf("History (%d)", m.history.size())},
		{tabHelp, "Help"},
	}
	segments := make([]string, 0, len(tabs)+2)
	segments = append(segments, m.theme.panelTitle.Render("🎖 FieldQuery"))
	for _, tab := range tabs {
		style := m.theme.tabInactive
		if tab.id == m.activeTab {
			style = m.theme.tabActive
		}
		segments = append(segments, style.Render(tab.label))
	}
	segments = append(segments, m.healthIndicator())
	joined := lipgloss.JoinHorizontal(lipgloss.Left, segments...)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(joined)
}

func (m *model) renderContent() string {
	contentHeight := maxInt(8, m.height-10)
	contentWidth := maxInt(40, m.width-4)
	panel := m.theme.panel.Width(contentWidth).Height(contentHeight)

	switch m.activeTab {
	case tabQuery:
		return panel.Render(m.theme.panelTitle.Render("Response") + "\n" + m.answerPane.View())
	case tabHistory:
		return panel.Render(m.theme.panelTitle.Render("Query History") + "\n" + m.historyPane.View())
	case tabHelp:
		return panel.Render(m.theme.panelTitle.Render("FieldQuery Help") + "\n" + m.renderHelp())
	default:
		return ""
	}
}

func (m *model) renderAnswer() string {
	width := maxInt(24, m.answerPane.Width-2)
	if m.errMsg != "" {
		return m.theme.errorStatus.Render("⚠ Error: ") + wrapText(m.errMsg, width) + "\n\n" +
			m.theme.helpText.Render("Press Esc to dismiss, or submit a new question.")
	}
	if m.phase == phaseSubmitting {
		return m.spinner.View() + " processing..."
	}
	if m.result == nil {
		lines := []string{"No response yet. Type a question and press Enter."}
		if len(m.examples) > 0 {
			lines = append(lines, "", m.theme.helpText.Render("Ctrl+E cycles example queries:"))
			for _, example := range m.examples {
				lines = append(lines, m.theme.helpText.Render(fmt.Sprintf("- [%s] %s", example.Category, example.Query)))
			}
		}
		return strings.Join(lines, "\n")
	}

	d := m.display
	confidenceStyle, ok := m.theme.confidence[d.Weight]
	if !ok {
		confidenceStyle = m.theme.confidence[weightNeutral]
	}
	confidenceLabel := nullCoalesce(d.Confidence, "n/a") + " confidence"

	var b strings.Builder
	b.WriteString(m.theme.toolBadge.Render(d.ToolIcon+" "+d.ToolLabel) + "  " + confidenceStyle.Render(confidenceLabel))
	b.WriteString("\n\n")
	b.WriteString(m.theme.answerText.Render(wrapText(d.Answer, width)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.panelTitle.Render("Sources: ") + d.SourceSummary)
	if d.HasDetails {
		if m.showDetails {
			b.WriteString("\n")
			for _, line := range d.DetailLines {
				b.WriteString("\n" + wrapText(line, width))
			}
		} else {
			b.WriteString("\n" + m.theme.helpText.Render("Ctrl+S shows per-source detail."))
		}
	}
	if d.Reasoning != "" {
		b.WriteString("\n\n" + m.theme.panelTitle.Render("Reasoning: ") + wrapText(d.Reasoning, width))
	}
	return b.String()
}

func (m *model) renderHistory() string {
	if m.history.size() == 0 {
		return "No queries yet. Submit your first question to get started."
	}
	width := maxInt(24, m.historyPane.Width-2)
	var b strings.Builder
	for i := 0; i < m.history.size(); i++ {
		entry, _ := m.history.at(i)
		icon, _ := toolPresentation(entry.Result.ToolUsed)
		header := fmt.Sprintf("%s %s %s", entry.Timestamp, icon, nullCoalesce(entry.Result.ToolUsed, "unknown"))
		if i == m.historyIndex {
			b.WriteString(m.theme.selectedEntry.Render("▶ " + header))
		} else {
			b.WriteString(m.theme.helpText.Render("  " + header))
		}
		b.WriteString("\n")
		b.WriteString(m.theme.questionText.Render("Q: ") + wrapText(compactSingleLine(entry.Question, width), width))
		b.WriteString("\n")
		b.WriteString("A: " + wrapText(truncate(compactSingleLine(entry.Result.Answer, historyAnswerPreview+20), historyAnswerPreview), width))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func (m *model) renderHelp() string {
	lines := []string{
		"Keys",
		"- Tab / Shift+Tab: switch views",
		"- Enter: submit question (Ask tab) or replay entry (History tab)",
		"- Ctrl+S: toggle per-source detail on the current answer",
		"- Ctrl+E: cycle backend example queries into the input",
		"- Esc: dismiss error / back to Ask tab / quit prompt",
		"- History tab: Up/Down select, Enter or r replay, c clear all",
		"- PgUp/PgDn (or Up/Down with empty input): scroll",
		"- Ctrl+C: quit",
		"",
		"Notes",
		"- The status dot polls backend health; a degraded backend never",
		"  blocks submitting a query.",
		"- History keeps the last " + fmt.Sprintf("%d", maxHistoryEntries) + " answers for this session only.",
		"- Session ID: " + m.sessionID,
	}
	return m.theme.helpText.Render(strings.Join(lines, "\n"))
}

func (m *model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	if m.activeTab != tabQuery {
		return m.theme.inputPanel.Width(contentWidth).Render(m.theme.helpText.Render("Input active on the Ask Question tab. Press Tab to return."))
	}
	inputView := m.input.View()
	if m.phase == phaseSubmitting {
		inputView = m.spinner.View() + " " + inputView
	}
	count := m.theme.helpText.Render(fmt.Sprintf("%d characters", len(m.input.Value())))
	return m.theme.inputPanel.Width(contentWidth).Render(inputView + "\n" + count)
}

func (m *model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	if strings.Contains(strings.ToLower(m.statusLine), "failed") || strings.Contains(strings.ToLower(m.statusLine), "error") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 160))
	tip := m.theme.helpText.Render("💡 Use specific military terms for better results: MDMP, ACFT, DA forms, and more.")
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + tip)
}

func (m *model) renderQuitModal() string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(10, m.height-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.5), 36, 64)

	body := strings.Join([]string{
		m.theme.errorStatus.Render("Quit FieldQuery?"),
		m.theme.helpText.Render("History and session state are discarded on exit."),
		"",
		m.theme.modalAction.Render("[Y / Enter] Quit") + "    " + m.theme.helpText.Render("[N / Esc] Return"),
	}, "\n")
	panel := m.theme.modalFrame.Width(modalWidth).Render(body)
	return lipgloss.Place(canvasWidth, canvasHeight, lipgloss.Center, lipgloss.Center, panel)
}

func (m *model) renderPanes() {
	prevAnswerOffset := m.answerPane.YOffset
	prevHistoryOffset := m.historyPane.YOffset

	contentHeight := maxInt(8, m.height-10)
	contentWidth := maxInt(40, m.width-4)
	m.answerPane.Width = maxInt(20, contentWidth-4)
	m.answerPane.Height = maxInt(5, contentHeight-3)
	m.historyPane.Width = maxInt(20, contentWidth-4)
	m.historyPane.Height = maxInt(5, contentHeight-3)

	m.answerPane.SetContent(m.renderAnswer())
	m.answerPane.SetYOffset(prevAnswerOffset)
	m.historyPane.SetContent(m.renderHistory())
	m.historyPane.SetYOffset(prevHistoryOffset)
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
}

func (m *model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.logs = append(m.logs, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 200)))
	if len(m.logs) > 50 {
		m.logs = m.logs[len(m.logs)-50:]
	}
}
