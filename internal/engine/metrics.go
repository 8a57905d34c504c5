package engine

import (
	"math"
	"time"

	"github.com/qinghezeng/research-gamification/internal/catalog"
)

const dayLayout = "2006-01-02"

// DaySummary aggregates the records of one local calendar day.
type DaySummary struct {
	Date   time.Time
	Count  int
	Wins   int
	Draws  int
	Losses int
	Points int
}

// Metrics are derived from the activity log and never stored.
type Metrics struct {
	Total   int
	Wins    int
	Draws   int
	Losses  int
	Assists int
	KDA     float64
	WinRate float64

	PerDay        map[string]int
	MaxPerDay     int
	Hours         [24]int
	Distribution  map[catalog.Tier]int
	LeadingWinRun int

	Today DaySummary
	// Week holds the last seven days, oldest first, ending today.
	Week []DaySummary
}

// AllTiersSeen reports whether at least one record exists for every tier.
func (m Metrics) AllTiersSeen() bool {
	for _, t := range catalog.Tiers() {
		if m.Distribution[t] == 0 {
			return false
		}
	}
	return true
}

// HourSeen reports whether any record falls in [from, to) local hours.
func (m Metrics) HourSeen(from, to int) bool {
	for h := from; h < to && h < len(m.Hours); h++ {
		if m.Hours[h] > 0 {
			return true
		}
	}
	return false
}

func isAssist(t catalog.Tier) bool {
	return t == catalog.TierB || t == catalog.TierC
}

// computeKDA counts tier B and C records as assists at half weight. With no
// losses the raw value is returned; otherwise it is rounded to one decimal.
func computeKDA(wins, assists, losses int) float64 {
	v := float64(wins) + float64(assists)/2
	if losses == 0 {
		return v
	}
	return math.Round(v/float64(losses)*10) / 10
}

// ComputeMetrics derives counters from log (newest first). Day and hour
// buckets use loc; a nil loc means time.Local.
func ComputeMetrics(log []Activity, now time.Time, loc *time.Location) Metrics {
	if loc == nil {
		loc = time.Local
	}
	m := Metrics{
		PerDay:        map[string]int{},
		Distribution:  map[catalog.Tier]int{},
		LeadingWinRun: leadingWinRun(log),
	}

	localNow := now.In(loc)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)
	m.Today.Date = today
	m.Week = make([]DaySummary, 7)
	weekIndex := map[string]int{}
	for i := range m.Week {
		d := today.AddDate(0, 0, i-6)
		m.Week[i].Date = d
		weekIndex[d.Format(dayLayout)] = i
	}

	for _, a := range log {
		m.Total++
		switch a.Outcome {
		case OutcomeWin:
			m.Wins++
		case OutcomeDraw:
			m.Draws++
		case OutcomeLoss:
			m.Losses++
		}
		if isAssist(a.Tier) {
			m.Assists++
		}
		m.Distribution[a.Tier]++

		at := a.RecordedAt.In(loc)
		m.Hours[at.Hour()]++
		key := at.Format(dayLayout)
		m.PerDay[key]++
		if m.PerDay[key] > m.MaxPerDay {
			m.MaxPerDay = m.PerDay[key]
		}
		if i, ok := weekIndex[key]; ok {
			m.Week[i].add(a)
		}
	}

	m.Today = m.Week[len(m.Week)-1]
	m.KDA = computeKDA(m.Wins, m.Assists, m.Losses)
	if m.Total > 0 {
		m.WinRate = float64(m.Wins) / float64(m.Total)
	}
	return m
}

func (d *DaySummary) add(a Activity) {
	d.Count++
	d.Points += a.FinalScore
	switch a.Outcome {
	case OutcomeWin:
		d.Wins++
	case OutcomeDraw:
		d.Draws++
	case OutcomeLoss:
		d.Losses++
	}
}
