package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qinghezeng/research-gamification/internal/catalog"
	"github.com/qinghezeng/research-gamification/internal/engine"
)

// Research Rank theme (CLI + TUI).

const (
	IconRank    = "🏅"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconShop    = "🛒"
	IconFire    = "🔥"
	IconScroll  = "📜"
	IconCoin    = "🪙"
	IconLock    = "🔒"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeRankUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("RANK UP")
)

var tierStyles = map[catalog.Tier]lipgloss.Style{
	catalog.TierS: lipgloss.NewStyle().Bold(true).Foreground(cGold),
	catalog.TierA: lipgloss.NewStyle().Bold(true).Foreground(cAccent),
	catalog.TierB: lipgloss.NewStyle().Bold(true).Foreground(cPrimary),
	catalog.TierC: lipgloss.NewStyle().Bold(true).Foreground(cMuted),
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// TierBadge renders "[S]" in the tier colour.
func TierBadge(t catalog.Tier) string {
	st, ok := tierStyles[t]
	if !ok {
		st = Muted
	}
	return st.Render("[" + string(t) + "]")
}

func OutcomeText(o engine.Outcome) string {
	switch o {
	case engine.OutcomeWin:
		return Good.Render("win")
	case engine.OutcomeDraw:
		return Warn.Render("draw")
	case engine.OutcomeLoss:
		return Bad.Render("loss")
	default:
		return Muted.Render(string(o))
	}
}

// Points renders a signed score delta.
func Points(n int) string {
	switch {
	case n > 0:
		return Good.Render(fmt.Sprintf("+%d", n))
	case n < 0:
		return Bad.Render(fmt.Sprintf("%d", n))
	default:
		return Muted.Render("0")
	}
}

func Stars(filled, capacity int) string {
	if filled < 0 {
		filled = 0
	}
	if filled > capacity {
		filled = capacity
	}
	return Gold.Render(strings.Repeat("★", filled)) + Muted.Render(strings.Repeat("☆", capacity-filled))
}

func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := int(float64(value) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// RankCard is the boxed rank summary shared by `status` and the board.
func RankCard(p engine.Player, r engine.Rank) string {
	lines := []string{
		PanelTitle.Render(r.Tier.Icon + " " + r.Label()),
		Stars(r.StarsFilled, r.Tier.StarCapacity),
		ProgressBar(int(r.Progress), 100, 24) + Muted.Render(fmt.Sprintf(" %.0f%%", r.Progress)),
		LabelValue("Score", p.Score),
	}
	if next := engine.ScoreToNextRank(p.Score); next > 0 {
		lines = append(lines, Muted.Render(fmt.Sprintf("%d to next rank", next)))
	} else {
		lines = append(lines, Gold.Render("top rank"))
	}
	lines = append(lines,
		LabelValue("Streak", fmt.Sprintf("%s %d", IconFire, p.Streak)),
		LabelValue("Stars", fmt.Sprintf("%s %d", IconCoin, p.Currency)),
	)
	return Panel.Render(strings.Join(lines, "\n"))
}

// UnlockLine renders one achievement notification.
func UnlockLine(u engine.Unlock) string {
	line := fmt.Sprintf("%s %s %s", IconTrophy, u.Icon, Gold.Render(u.Name))
	if u.Reward > 0 {
		line += Muted.Render(fmt.Sprintf(" (+%d stars)", u.Reward))
	}
	return line
}
