package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"droneops-dispatch/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the status viewport.
type logMsg struct{ line string }

// eventMsg carries a flight event line.
type eventMsg struct{ line string }

// stateMsg carries a tick summary.
type stateMsg struct{ telemetry.ClockStateRow }

// telemetryMsg carries the latest row for one drone.
type telemetryMsg struct{ telemetry.DroneStatusRow }

const (
	maxLogLines  = 500
	idColumnSize = 14
)

// TUIWriter renders the fleet using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(overview Overview) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(overview), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.DroneStatusRow) error {
	line := fmt.Sprintf("%s[%s]%s %sdrone=%s%s %slat=%.5f%s %slon=%.5f%s %sbatt=%.1f%s %sstate=%s%s %shealth=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.DroneID, colorReset,
		colorGreen, row.Lat, colorReset,
		colorYellow, row.Lon, colorReset,
		colorCyan, row.Battery, colorReset,
		colorMagenta, row.State, colorReset,
		healthColor(row.Health), row.Health, colorReset)
	if row.FlightID != "" {
		line += fmt.Sprintf(" %sflight=%s %.0f%%%s", colorBlue, row.FlightID, row.Progress*100, colorReset)
	}
	w.program.Send(logMsg{line: line})
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteBatch outputs multiple drone status rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteFlightEvent implements FlightEventWriter.
func (w *TUIWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	line := fmt.Sprintf("%s[%s]%s %s%s %s%s drone=%s delivery=%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		colorCyan, strings.ToUpper(e.EventType), e.DisplayID, colorReset,
		e.DroneID, e.DeliveryID)
	if e.Reason != "" {
		line += " reason=" + e.Reason
	}
	w.program.Send(eventMsg{line: line})
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.ClockStateRow) error {
	w.program.Send(stateMsg{ClockStateRow: row})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	overview   Overview
	table      table.Model
	vp         viewport.Model
	eventVP    viewport.Model
	logs       []string
	events     []string
	drones     map[string]telemetry.DroneStatusRow
	state      telemetry.ClockStateRow
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

func newTUIModel(overview Overview) tuiModel {
	cols := []table.Column{
		{Title: "Drone", Width: idColumnSize},
		{Title: "State", Width: 10},
		{Title: "Battery", Width: 8},
		{Title: "Health", Width: 12},
		{Title: "Flight", Width: idColumnSize},
		{Title: "Progress", Width: 8},
	}
	return tuiModel{
		overview:   overview,
		table:      table.New(table.WithColumns(cols), table.WithHeight(1)),
		vp:         viewport.New(0, 0),
		eventVP:    viewport.New(0, 0),
		drones:     make(map[string]telemetry.DroneStatusRow),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.eventVP.Width = msg.Width
		m.layout()
		m.refreshViewport()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.refreshEvents()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.eventVP.GotoBottom()
			}
			return m, nil
		case "?", "h":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case logMsg:
		m.logs = appendCapped(m.logs, msg.line)
		m.refreshViewport()
	case eventMsg:
		m.events = appendCapped(m.events, msg.line)
		m.refreshEvents()
	case telemetryMsg:
		m.drones[msg.DroneID] = msg.DroneStatusRow
		m.refreshTable()
		m.layout()
	case stateMsg:
		m.state = msg.ClockStateRow
	}
	return m, nil
}

func appendCapped(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

func (m *tuiModel) refreshTable() {
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		d := m.drones[id]
		progress := ""
		if d.FlightID != "" {
			progress = fmt.Sprintf("%.0f%%", d.Progress*100)
		}
		rows = append(rows, table.Row{
			truncate.StringWithTail(d.DroneID, idColumnSize, "…"),
			d.State,
			fmt.Sprintf("%.1f", d.Battery),
			d.Health,
			truncate.StringWithTail(d.FlightID, idColumnSize, "…"),
			progress,
		})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
}

// layout splits the space left under the table between the two viewports.
func (m *tuiModel) layout() {
	if m.height == 0 {
		return
	}
	used := lipgloss.Height(m.table.View()) + lipgloss.Height(m.renderBottom()) + 4
	free := m.height - used
	if free < 2 {
		free = 2
	}
	m.eventVP.Height = max(1, free/3)
	m.vp.Height = max(1, free-m.eventVP.Height)
}

func (m *tuiModel) wrapLines(lines []string, width int) string {
	if !m.wrap || width <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = wordwrap.String(l, width)
	}
	return strings.Join(out, "\n")
}

func (m *tuiModel) refreshViewport() {
	m.vp.SetContent(m.wrapLines(m.logs, m.vp.Width))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.events) > 0 {
		content = m.wrapLines(m.events, m.eventVP.Width)
	}
	m.eventVP.SetContent(content)
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.width)
	return strings.Join([]string{
		m.table.View(),
		divider,
		m.vp.View(),
		divider,
		"Flight Events:",
		m.eventVP.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	state := fmt.Sprintf("%sTICK %d%s %sin_progress=%d%s %scompleted=%d%s %srecharging=%d%s %spending=%d%s",
		colorBlue, m.state.Tick, colorReset,
		colorYellow, m.state.InProgressFlights, colorReset,
		colorGreen, m.state.CompletedFlights, colorReset,
		colorCyan, m.state.RechargingDrones, colorReset,
		colorMagenta, m.state.PendingDeliveries, colorReset)
	return fmt.Sprintf("%s | %s | Auto-complete %s | Wrap %s | Scroll %s | h help",
		state, m.overview.ClusterID, indicator(m.overview.Params.AutoComplete), indicator(m.wrap), indicator(m.autoscroll))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
