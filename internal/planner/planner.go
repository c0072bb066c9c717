// Package planner lays out a posting calendar: topics cycled over eligible
// days, each day paired with a content type and a recommended window.
package planner

import (
	"time"

	"postline/internal/advisor"
	"postline/internal/config"
	"postline/internal/domain"
)

// Planner builds calendars from config policy and advisor timing.
type Planner struct {
	cfg     *config.Config
	advisor *advisor.Advisor
}

// New builds a Planner.
func New(cfg *config.Config, adv *advisor.Advisor) *Planner {
	return &Planner{cfg: cfg, advisor: adv}
}

// Request describes one calendar to plan.
type Request struct {
	Topics   []string
	Days     int
	Start    time.Time
	Industry string
	Timezone string
}

// Plan assigns one entry per eligible day starting from the request's start
// date. Topics repeat in order when there are more days than topics, content
// types follow the fixed rotation, and weekends are skipped when the config
// says so. The same request always yields the same calendar.
func (p *Planner) Plan(req Request) ([]domain.CalendarEntry, error) {
	if req.Days <= 0 {
		return nil, domain.Errorf(domain.KindInvalidPlan, "day count must be positive, got %d", req.Days)
	}
	if len(req.Topics) == 0 {
		return nil, domain.Errorf(domain.KindInvalidPlan, "at least one topic is required")
	}
	for i, t := range req.Topics {
		if t == "" {
			return nil, domain.Errorf(domain.KindInvalidPlan, "topic %d is empty", i)
		}
	}

	windows, err := p.advisor.RecommendTimes(req.Timezone, req.Industry)
	if err != nil {
		return nil, err
	}

	rotation := domain.ContentTypeRotation()
	start := req.Start.Truncate(24 * time.Hour)
	entries := make([]domain.CalendarEntry, 0, req.Days)
	offset := 0
	for len(entries) < req.Days {
		date := start.AddDate(0, 0, offset)
		if p.cfg.Calendar.SkipWeekends && isWeekend(date) {
			offset++
			continue
		}
		i := len(entries)
		entries = append(entries, domain.CalendarEntry{
			DayOffset:   offset,
			Date:        date,
			Topic:       req.Topics[i%len(req.Topics)],
			ContentType: rotation[i%len(rotation)],
			Window:      windows[i%len(windows)],
		})
		offset++
	}
	return entries, nil
}

func isWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}
