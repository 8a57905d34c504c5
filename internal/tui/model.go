package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/engine"
	"github.com/qinghezeng/research-gamification/internal/ui"
)

const historyRows = 6

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	player engine.Player
	rank   engine.Rank
	lines  []taskLine
	alerts []engine.Unlock

	selected int
	lastLog  string
}

type taskLine struct {
	tier catalog.Tier
	tpl  catalog.Template
}

type recordedMsg struct {
	res *engine.RecordResult
	err error
}

type undoneMsg struct {
	res *engine.DeleteResult
	err error
}

type tickMsg time.Time

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	m := boardModel{ctx: ctx, svc: svc, lastLog: "Loaded."}
	m.reload()
	return m
}

func (m boardModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// reload pulls fresh read views from the service.
func (m *boardModel) reload() {
	m.player = m.svc.Player()
	m.rank = m.svc.Rank()
	m.alerts = m.svc.Notifications()
	m.lines = nil
	for _, tier := range catalog.Tiers() {
		for _, tpl := range m.svc.ListVisible(tier) {
			m.lines = append(m.lines, taskLine{tier: tier, tpl: tpl})
		}
	}
	if m.selected >= len(m.lines) {
		m.selected = len(m.lines) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) recordCmd(line taskLine, o engine.Outcome) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Record(m.ctx, line.tier, line.tpl.Name, o)
		return recordedMsg{res: res, err: err}
	}
}

func (m boardModel) undoCmd() tea.Cmd {
	return func() tea.Msg {
		log := m.svc.Player().Log
		if len(log) == 0 {
			return undoneMsg{err: fmt.Errorf("%w: no records", engine.ErrNotFound)}
		}
		res, err := m.svc.DeleteActivity(m.ctx, log[0].ID)
		return undoneMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.alerts = m.svc.Notifications()
		return m, tick()
	case recordedMsg:
		if msg.err != nil {
			m.lastLog = "Record failed: " + msg.err.Error()
			return m, nil
		}
		a := msg.res.Activity
		m.lastLog = fmt.Sprintf("%s %s: %s (%s → %s)", a.Outcome, a.TaskName, signed(a.FinalScore), msg.res.RankBefore.Label(), msg.res.RankAfter.Label())
		if msg.res.RankUp() {
			m.lastLog += " " + ui.BadgeRankUp
		}
		m.reload()
		return m, nil
	case undoneMsg:
		if msg.err != nil {
			m.lastLog = "Undo failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Removed %s (%s): score %d → %d", msg.res.Activity.TaskName, msg.res.Activity.Outcome, msg.res.ScoreBefore, msg.res.ScoreAfter)
		m.reload()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.reload()
			m.lastLog = fmt.Sprintf("Refreshed at %s.", m.svc.Now().Format("15:04:05"))
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.lines)-1 {
				m.selected++
			}
			return m, nil
		case "w", "d", "l":
			if m.selected < 0 || m.selected >= len(m.lines) {
				return m, nil
			}
			o, err := engine.ParseOutcome(msg.String())
			if err != nil {
				return m, nil
			}
			line := m.lines[m.selected]
			m.lastLog = fmt.Sprintf("Recording %s…", line.tpl.Name)
			return m, m.recordCmd(line, o)
		case "u":
			m.lastLog = "Undoing latest record…"
			return m, m.undoCmd()
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	header := ui.RankCard(m.player, m.rank)
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 34
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Recent"}
	if len(m.player.Log) == 0 {
		lines = append(lines, "(no records yet)")
	}
	for i, a := range m.player.Log {
		if i == historyRows {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", a.Tier, signed(a.FinalScore), a.TaskName))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- w/d/l: win/draw/loss")
	lines = append(lines, "- u: undo latest")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	var out []string
	var tier catalog.Tier
	for i, line := range m.lines {
		if line.tier != tier {
			if tier != "" {
				out = append(out, "")
			}
			tier = line.tier
			out = append(out, ui.TierBadge(tier)+" tasks")
		}
		cursor := "  "
		text := fmt.Sprintf("%-28s %4d  %s", line.tpl.Name, line.tpl.BaseScore, line.tpl.Duration)
		if i == m.selected {
			cursor = "> "
			text = ui.SelectedRow.Render(text)
		}
		out = append(out, cursor+text)
	}
	if len(out) == 0 {
		out = append(out, "(no visible tasks)")
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	var b strings.Builder
	for _, u := range m.alerts {
		b.WriteString(ui.UnlockLine(u))
		b.WriteString("\n")
	}
	return "\n" + b.String() + m.lastLog
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
