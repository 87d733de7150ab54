package sim

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"reliefops-sim/internal/config"
	"reliefops-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

type moveMsg struct{ telemetry.MoveRow }

type zoneMsg struct{ telemetry.ZoneEventRow }

type statsMsg struct{ telemetry.StatsRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setReporterMsg struct {
	fn func(x, y, severity int) string
}

const maxLogLines = 500

var (
	mapZoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mapHubStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mapDroneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mapEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TUIWriter renders the relief grid using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
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

// Write implements MoveWriter.
func (w *TUIWriter) Write(row telemetry.MoveRow) error {
	w.program.Send(moveMsg{row})
	return nil
}

// WriteBatch outputs multiple move rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.MoveRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteZoneEvent implements ZoneEventWriter.
func (w *TUIWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	w.program.Send(zoneMsg{e})
	return nil
}

// WriteStats implements StatsWriter.
func (w *TUIWriter) WriteStats(row telemetry.StatsRow) error {
	w.program.Send(statsMsg{row})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetZoneReporter registers the callback used by the report dialog.
func (w *TUIWriter) SetZoneReporter(fn func(x, y, severity int) string) {
	w.program.Send(setReporterMsg{fn: fn})
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

type droneView struct {
	pos     telemetry.Coord
	fuel    int
	outcome string
}

type tuiModel struct {
	gridSize   int
	hubs       map[telemetry.Coord]bool
	zones      map[telemetry.Coord]int
	drones     map[string]droneView
	order      []string
	stats      telemetry.StatsRow
	table      table.Model
	vp         viewport.Model
	input      textinput.Model
	dialog     bool
	logs       []string
	wrap       bool
	autoscroll bool
	help       bool
	admin      bool
	width      int
	height     int
	report     func(x, y, severity int) string
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	m := tuiModel{
		gridSize:   cfg.GridSize,
		hubs:       make(map[telemetry.Coord]bool),
		zones:      make(map[telemetry.Coord]int),
		drones:     make(map[string]droneView),
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
	for _, h := range cfg.Hubs {
		m.hubs[telemetry.Coord{X: h.X, Y: h.Y}] = true
	}
	for _, d := range cfg.Drones {
		m.drones[d.ID] = droneView{pos: telemetry.Coord{X: d.X, Y: d.Y}, fuel: telemetry.MaxFuel, outcome: "-"}
		m.order = append(m.order, d.ID)
	}
	sort.Strings(m.order)
	cols := []table.Column{
		{Title: "Drone", Width: 10},
		{Title: "Pos", Width: 8},
		{Title: "Fuel", Width: 5},
		{Title: "Last", Width: 16},
	}
	m.table = table.New(table.WithColumns(cols), table.WithHeight(len(m.order)+1))
	m.refreshTable()
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.dialog {
			switch msg.Type {
			case tea.KeyEnter:
				m.dialog = false
				x, y, sev, err := parseZoneInput(m.input.Value())
				if err != nil {
					m.appendLog(errorStyle.Render("Invalid Format. Use x,y (e.g., 5,5)"))
					return m, nil
				}
				if m.report == nil {
					return m, nil
				}
				report := m.report
				return m, func() tea.Msg { return logMsg{line: report(x, y, sev)} }
			case tea.KeyEsc:
				m.dialog = false
				return m, nil
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}
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
		case "?", "h":
			m.help = true
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		case "z":
			m.input = textinput.New()
			m.input.Placeholder = "x,y[,severity]"
			m.input.Focus()
			m.dialog = true
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case logMsg:
		m.appendLog(msg.line)
	case moveMsg:
		line := fmt.Sprintf("[%s] T%d %s", msg.Timestamp.Format(time.TimeOnly), msg.Turn, msg.Message)
		if telemetry.Outcome(msg.Outcome) == telemetry.OutcomeNotFound {
			m.appendLog(errorStyle.Render(line))
			return m, nil
		}
		m.drones[msg.DroneID] = droneView{pos: telemetry.Coord{X: msg.X, Y: msg.Y}, fuel: msg.Fuel, outcome: msg.Outcome}
		if !containsString(m.order, msg.DroneID) {
			m.order = append(m.order, msg.DroneID)
			sort.Strings(m.order)
		}
		m.refreshTable()
		m.appendLog(line)
	case zoneMsg:
		c := telemetry.Coord{X: msg.X, Y: msg.Y}
		switch msg.EventType {
		case telemetry.ZoneEventRegistered:
			m.zones[c]++
			m.appendLog(fmt.Sprintf("[%s] ALERT zone %s severity %d (%s)", msg.Timestamp.Format(time.TimeOnly), c, msg.Severity, msg.Source))
		case telemetry.ZoneEventCleared:
			if m.zones[c] > 1 {
				m.zones[c]--
			} else {
				delete(m.zones, c)
			}
		case telemetry.ZoneEventRejected:
			m.appendLog(errorStyle.Render(fmt.Sprintf("zone %s rejected: coordinates out of bounds", c)))
		}
	case statsMsg:
		m.stats = msg.StatsRow
	case adminMsg:
		m.admin = msg.active
	case setReporterMsg:
		m.report = msg.fn
	}
	return m, nil
}

func (m *tuiModel) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshViewport()
}

func (m *tuiModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.order))
	for _, id := range m.order {
		d := m.drones[id]
		rows = append(rows, table.Row{id, d.pos.String(), strconv.Itoa(d.fuel), d.outcome})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
}

func (m *tuiModel) updateViewportHeight() {
	top := lipgloss.Height(m.renderTop())
	h := m.height - top - lipgloss.Height(m.renderBottom()) - 2
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.width)
	return strings.Join([]string{m.renderTop(), divider, m.vp.View(), divider, m.renderBottom()}, "\n")
}

func (m tuiModel) renderTop() string {
	grid := titleStyle.Render("Sector Map") + "\n" + m.renderMap()
	drones := titleStyle.Render("Fleet") + "\n" + m.table.View()
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", drones)
}

// renderMap draws the grid with y growing downwards. Drones win over zones, zones
// over hubs.
func (m tuiModel) renderMap() string {
	occupied := make(map[telemetry.Coord]string)
	for _, id := range m.order {
		if id == "" {
			continue
		}
		d := m.drones[id]
		if _, ok := occupied[d.pos]; !ok {
			occupied[d.pos] = id[:1]
		}
	}
	var b strings.Builder
	for y := 0; y < m.gridSize; y++ {
		for x := 0; x < m.gridSize; x++ {
			c := telemetry.Coord{X: x, Y: y}
			switch {
			case occupied[c] != "":
				b.WriteString(mapDroneStyle.Render(occupied[c]))
			case m.zones[c] > 0:
				b.WriteString(mapZoneStyle.Render("*"))
			case m.hubs[c]:
				b.WriteString(mapHubStyle.Render("H"))
			default:
				b.WriteString(mapEmptyStyle.Render("."))
			}
			b.WriteString(" ")
		}
		if y < m.gridSize-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m tuiModel) renderBottom() string {
	admin := "admin: off"
	if m.admin {
		admin = "admin: on"
	}
	activeZones := 0
	for _, n := range m.zones {
		activeZones += n
	}
	status := fmt.Sprintf("turn %d | moves %d | fuel used %d | cleared %d | refuels %d | active zones %d | %s",
		m.stats.Turn, m.stats.TotalMoves, m.stats.TotalFuelConsumed, m.stats.ZonesCleared, m.stats.RefuelCount, activeZones, admin)
	if m.dialog {
		return status + "\nReport incident: " + m.input.View()
	}
	return status + "\n[z] report incident  [w] wrap  [s] autoscroll  [?] help  [q] quit"
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		titleStyle.Render("Keys"),
		"z      report an incident as x,y or x,y,severity",
		"w      toggle line wrapping",
		"s      toggle autoscroll",
		"↑/↓    scroll the action log",
		"?/h    toggle this help",
		"q      quit",
		"",
		"Map: letters are drones, * active zones, H refuel hubs.",
	}
	return strings.Join(lines, "\n")
}

// parseZoneInput accepts "x,y" or "x,y,severity".
func parseZoneInput(val string) (x, y, severity int, err error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected x,y[,severity]")
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, err
		}
		nums[i] = n
	}
	if len(nums) == 3 {
		severity = nums[2]
	}
	return nums[0], nums[1], severity, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
