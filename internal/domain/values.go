package domain

import (
	"strings"
	"time"
)

// Tone is the writing voice of a post.
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneInspirational Tone = "inspirational"
	ToneEducational   Tone = "educational"
	ToneStorytelling  Tone = "storytelling"
)

// ValidTones lists every accepted tone in display order.
func ValidTones() []Tone {
	return []Tone{ToneProfessional, ToneCasual, ToneInspirational, ToneEducational, ToneStorytelling}
}

// ParseTone normalizes and validates a tone string.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ValidTones() {
		if t == v {
			return t, nil
		}
	}
	return "", Errorf(KindInvalidInput, "invalid tone %q; valid tones: %s", s, joinTones())
}

func joinTones() string {
	names := make([]string, 0, len(ValidTones()))
	for _, t := range ValidTones() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// ContentType classifies a calendar slot.
type ContentType string

const (
	ContentThoughtLeadership ContentType = "thought-leadership"
	ContentHowTo             ContentType = "how-to"
	ContentStory             ContentType = "story"
	ContentPoll              ContentType = "poll"
	ContentListicle          ContentType = "listicle"
	ContentCaseStudy         ContentType = "case-study"
)

// ContentTypeRotation is the fixed order content types are assigned in.
func ContentTypeRotation() []ContentType {
	return []ContentType{
		ContentThoughtLeadership,
		ContentHowTo,
		ContentStory,
		ContentPoll,
		ContentListicle,
		ContentCaseStudy,
	}
}

// Content is the composed text of a post: hook, body, call to action.
type Content struct {
	Hook         string `json:"hook"`
	Body         string `json:"body"`
	CallToAction string `json:"call_to_action"`
}

// HashtagCategory groups hashtag suggestions by intent.
type HashtagCategory string

const (
	HashtagIndustry HashtagCategory = "industry"
	HashtagTrending HashtagCategory = "trending"
	HashtagNiche    HashtagCategory = "niche"
	HashtagBroad    HashtagCategory = "broad"
)

// HashtagSuggestion is one recommended tag with its category.
type HashtagSuggestion struct {
	Tag      string          `json:"tag"`
	Category HashtagCategory `json:"category"`
}

// EngagementScore is a recomputed-on-demand quality estimate. It is never
// persisted; an unchanged post always scores identically.
type EngagementScore struct {
	Overall     float64            `json:"overall"`
	Breakdown   map[string]float64 `json:"breakdown"`
	Suggestions []string           `json:"suggestions"`
}

// Score dimension names used as Breakdown keys.
const (
	DimLength      = "length"
	DimReadability = "readability"
	DimHook        = "hook"
	DimHashtags    = "hashtags"
	DimCTA         = "cta"
)

// TimeWindow is one recommended posting slot.
type TimeWindow struct {
	Day        string  `json:"day"`
	Hour       int     `json:"hour"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// CalendarEntry assigns a topic, content type, and time window to one day.
type CalendarEntry struct {
	DayOffset   int         `json:"day_offset"`
	Date        time.Time   `json:"date"`
	Topic       string      `json:"topic"`
	ContentType ContentType `json:"content_type"`
	Window      TimeWindow  `json:"window"`
}
