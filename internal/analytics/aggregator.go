// Package analytics derives daily engagement metrics from the
// append-only action log. All computation replays events; derived rows
// are never a source of truth.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"dailybot/internal/model"
)

// Engagement score weights. Policy constants: commands weigh more than
// plain messages, feature requests more than commands, and using more
// distinct action kinds in a day adds a diversity bonus.
const (
	weightMessage   = 1.0
	weightCommand   = 2.5
	weightFeature   = 4.0
	weightDiversity = 1.5
)

// EventSource is the slice of the event log the aggregator reads.
type EventSource interface {
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]model.UserAction, error)
}

// CommandCount is one entry of the most-used-commands ranking.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// Report is the aggregation result over a date range.
type Report struct {
	Days          []model.UserAnalytics
	TotalMessages int
	TotalCommands int
	AstroRequests int
	MoonRequests  int
	MostUsed      []CommandCount
}

// Aggregator computes daily metrics on read. It never mutates events
// and is safe for concurrent use.
type Aggregator struct {
	events EventSource
}

func New(events EventSource) *Aggregator {
	return &Aggregator{events: events}
}

// Aggregate returns one row per UTC calendar day in [from, to] (both
// bounds taken as calendar dates, inclusive) on which the user had at
// least one event, ordered by date ascending. Days with zero events
// produce no row.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, from, to time.Time) ([]model.UserAnalytics, error) {
	report, err := a.Report(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return report.Days, nil
}

// Report aggregates the range and additionally ranks commands across it.
// Ranking is by count descending; ties keep first-occurrence order.
func (a *Aggregator) Report(ctx context.Context, userID string, from, to time.Time) (*Report, error) {
	from = dayStartUTC(from)
	to = dayStartUTC(to).AddDate(0, 0, 1) // end of the last requested day

	actions, err := a.events.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	report := &Report{}
	byDay := make(map[time.Time]*model.UserAnalytics)
	var dayOrder []time.Time

	cmdCounts := make(map[string]int)
	cmdFirst := make(map[string]int)

	for i, action := range actions {
		day := dayStartUTC(action.CreatedAt)
		row, ok := byDay[day]
		if !ok {
			row = &model.UserAnalytics{
				UserID:       userID,
				Date:         day,
				CommandsUsed: make(map[string]int),
			}
			byDay[day] = row
			dayOrder = append(dayOrder, day)
		}

		ts := action.CreatedAt.UTC()
		if row.FirstActivityAt == nil || ts.Before(*row.FirstActivityAt) {
			first := ts
			row.FirstActivityAt = &first
		}
		if row.LastActivityAt == nil || ts.After(*row.LastActivityAt) {
			last := ts
			row.LastActivityAt = &last
		}

		if action.Kind.IsCommand() {
			row.TotalCommands++
			report.TotalCommands++
			name := commandName(action)
			row.CommandsUsed[name]++
			if cmdCounts[name] == 0 {
				cmdFirst[name] = i
			}
			cmdCounts[name]++
		} else {
			row.TotalMessages++
			report.TotalMessages++
		}

		switch action.Kind {
		case model.ActionAstroRequest:
			row.AstroRequests++
			report.AstroRequests++
		case model.ActionMoonRequest:
			row.MoonRequests++
			report.MoonRequests++
		}
	}

	for _, day := range dayOrder {
		row := byDay[day]
		row.SessionDurationMin = sessionSpanMinutes(row.FirstActivityAt, row.LastActivityAt)
		row.EngagementScore = engagementScore(row, distinctKinds(actions, day))
		report.Days = append(report.Days, *row)
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date.Before(report.Days[j].Date)
	})

	report.MostUsed = rankCommands(cmdCounts, cmdFirst)
	return report, nil
}

func rankCommands(counts map[string]int, first map[string]int) []CommandCount {
	ranked := make([]CommandCount, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, CommandCount{Command: name, Count: n})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return first[ranked[i].Command] < first[ranked[j].Command]
	})
	return ranked
}

func commandName(action model.UserAction) string {
	if action.Command != "" {
		return action.Command
	}
	return string(action.Kind)
}

func sessionSpanMinutes(first, last *time.Time) int {
	if first == nil || last == nil {
		return 0
	}
	return int(last.Sub(*first).Minutes())
}

func distinctKinds(actions []model.UserAction, day time.Time) int {
	kinds := make(map[model.ActionKind]struct{})
	for _, a := range actions {
		if dayStartUTC(a.CreatedAt).Equal(day) {
			kinds[a.Kind] = struct{}{}
		}
	}
	return len(kinds)
}

func engagementScore(row *model.UserAnalytics, distinct int) float64 {
	score := float64(row.TotalMessages)*weightMessage +
		float64(row.TotalCommands)*weightCommand +
		float64(row.AstroRequests+row.MoonRequests)*weightFeature +
		float64(distinct)*weightDiversity
	return math.Round(score*100) / 100
}

// dayStartUTC truncates a timestamp to midnight UTC. The day boundary
// policy is UTC for every user.
func dayStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
