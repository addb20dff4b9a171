package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"watcharb/business/arbitrage/domain"
)

const maxLogLines = 6

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	width  int
	height int

	scanning   bool
	scanStatus string
	lastRun    *RunCompletedMsg
	runClosed  bool

	opportunities []*domain.Opportunity
	logs          []string
	errorMsg      string
	quitting      bool
}

// New creates a new TUI model.
func New() Model {
	columns := []table.Column{
		{Title: "Type", Width: 14},
		{Title: "Buy", Width: 10},
		{Title: "Buy $", Width: 10},
		{Title: "Sell", Width: 10},
		{Title: "Profit $", Width: 10},
		{Title: "ROI %", Width: 8},
		{Title: "Conf", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorBorder)
	t.SetStyles(tableStyles)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		table:   t,
		spinner: s,
		help:    help.New(),
		keys:    DefaultKeyMap(),
		logs:    make([]string, 0, maxLogLines),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.opportunities = nil
			m.table.SetRows(nil)
			m.errorMsg = ""
			return m, nil
		case "?":
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case OpportunityMsg:
		if m.runClosed {
			m.opportunities = nil
			m.runClosed = false
		}
		m.opportunities = append(m.opportunities, msg.Opportunity)
		m.table.SetRows(m.rows())
		return m, nil

	case RunCompletedMsg:
		m.lastRun = &msg
		m.runClosed = true
		return m, nil

	case ScanStatusMsg:
		m.scanning = msg.Scanning
		if msg.Scanning {
			m.scanStatus = "scanning marketplaces..."
		} else {
			m.scanStatus = fmt.Sprintf("scan done: %d refs, %d new, %d updated, %d stale, %d errors",
				msg.References, msg.Created, msg.Updated, msg.StaleMarked, msg.Errors)
		}
		return m, nil

	case LogMsg:
		line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), msg.Message)
		m.logs = append(m.logs, line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()
		if m.scanning {
			m.scanning = false
			m.scanStatus = "scan failed"
		}
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.opportunities))
	for _, o := range m.opportunities {
		sell := o.SellPlatformString()
		if sell == "" {
			sell = "-"
		}
		rows = append(rows, table.Row{
			string(o.Type),
			string(o.BuyPlatform),
			o.BuyPrice.StringFixed(0),
			sell,
			o.EstimatedProfit.StringFixed(0),
			o.ROIPercent.StringFixed(1),
			fmt.Sprintf("%d", o.ConfidenceScore),
		})
	}
	return rows
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string

	sections = append(sections, TitleStyle.Render(" watcharb "))

	status := m.scanStatus
	if m.scanning {
		status = m.spinner.View() + " " + status
	}
	if status != "" {
		sections = append(sections, HeaderStyle.Render(status))
	}

	if m.lastRun != nil {
		summary := fmt.Sprintf("last run: %d refs, %d listings, %d opportunities in %s",
			m.lastRun.References, m.lastRun.ListingsAnalyzed,
			m.lastRun.Opportunities, m.lastRun.Duration.Round(time.Millisecond))
		sections = append(sections, MutedValue.Render(summary))
	}

	sections = append(sections, BoxStyle.Render(m.table.View()))

	if m.errorMsg != "" {
		sections = append(sections, NegativeValue.Render("error: "+m.errorMsg))
	}

	for _, line := range m.logs {
		sections = append(sections, MutedValue.Render(line))
	}

	sections = append(sections, HelpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
