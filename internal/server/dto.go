package server

import (
	"time"

	"postline/internal/domain"
)

// postDTO is the wire shape of a post.
type postDTO struct {
	ID            string     `json:"id"`
	Topic         string     `json:"topic"`
	Tone          string     `json:"tone"`
	Hook          string     `json:"hook"`
	Body          string     `json:"body"`
	CallToAction  string     `json:"call_to_action"`
	Hashtags      []string   `json:"hashtags,omitempty"`
	Status        string     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	PublishedTime *time.Time `json:"published_time,omitempty"`
	RemoteID      string     `json:"remote_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toPostDTO(p domain.Post) postDTO {
	return postDTO{
		ID:            p.ID,
		Topic:         p.Topic,
		Tone:          string(p.Tone),
		Hook:          p.Content.Hook,
		Body:          p.Content.Body,
		CallToAction:  p.Content.CallToAction,
		Hashtags:      p.Hashtags,
		Status:        string(p.Status),
		ScheduledTime: p.ScheduledTime,
		PublishedTime: p.PublishedTime,
		RemoteID:      p.RemoteID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPostDTOs(posts []domain.Post) []postDTO {
	out := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	return out
}

type scoreDTO struct {
	Overall     float64            `json:"overall"`
	Breakdown   map[string]float64 `json:"breakdown"`
	Suggestions []string           `json:"suggestions"`
}

func toScoreDTO(s domain.EngagementScore) scoreDTO {
	return scoreDTO(s)
}

type hashtagDTO struct {
	Tag      string `json:"tag"`
	Category string `json:"category"`
}

func toHashtagDTOs(suggestions []domain.HashtagSuggestion) []hashtagDTO {
	out := make([]hashtagDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, hashtagDTO{Tag: s.Tag, Category: string(s.Category)})
	}
	return out
}

type windowDTO struct {
	Day        string  `json:"day"`
	Hour       int     `json:"hour"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

func toWindowDTO(w domain.TimeWindow) windowDTO {
	return windowDTO(w)
}

func toWindowDTOs(windows []domain.TimeWindow) []windowDTO {
	out := make([]windowDTO, 0, len(windows))
	for _, w := range windows {
		out = append(out, toWindowDTO(w))
	}
	return out
}

type calendarEntryDTO struct {
	DayOffset   int       `json:"day_offset"`
	Date        string    `json:"date"`
	Topic       string    `json:"topic"`
	ContentType string    `json:"content_type"`
	Window      windowDTO `json:"window"`
}

func toCalendarDTOs(entries []domain.CalendarEntry) []calendarEntryDTO {
	out := make([]calendarEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, calendarEntryDTO{
			DayOffset:   e.DayOffset,
			Date:        e.Date.Format("2006-01-02"),
			Topic:       e.Topic,
			ContentType: string(e.ContentType),
			Window:      toWindowDTO(e.Window),
		})
	}
	return out
}
