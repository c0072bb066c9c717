// Package advisor recommends hashtags and posting windows from the heuristic
// tables in config. All recommendations are deterministic for a given config.
package advisor

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"postline/internal/config"
	"postline/internal/domain"
)

const maxWindows = 3

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Advisor answers hashtag and timing questions against a loaded config.
type Advisor struct {
	cfg *config.Config
}

// New builds an Advisor over the given config.
func New(cfg *config.Config) *Advisor {
	return &Advisor{cfg: cfg}
}

// SuggestHashtags returns categorized hashtag suggestions for a topic. When
// industry is empty it is inferred from the topic. Each category contributes
// at most the configured per-category cap, and no tag appears twice.
func (a *Advisor) SuggestHashtags(topic, industry string) []domain.HashtagSuggestion {
	if industry == "" {
		industry = a.inferIndustry(topic)
	}
	industryTags, ok := a.cfg.Advisor.Industries[strings.ToLower(industry)]
	if !ok {
		industryTags = a.cfg.Advisor.Industries["default"]
	}

	perCat := a.cfg.Advisor.PerCategory
	seen := map[string]struct{}{}
	var out []domain.HashtagSuggestion

	add := func(tag string, cat domain.HashtagCategory, taken int) int {
		if taken >= perCat {
			return taken
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return taken
		}
		seen[key] = struct{}{}
		out = append(out, domain.HashtagSuggestion{Tag: tag, Category: cat})
		return taken + 1
	}

	taken := 0
	for _, tag := range industryTags {
		taken = add(tag, domain.HashtagIndustry, taken)
	}

	taken = 0
	topicLower := strings.ToLower(topic)
	for _, tag := range a.cfg.Advisor.Trending {
		if tagMatchesTopic(tag, topicLower) {
			taken = add(tag, domain.HashtagTrending, taken)
		}
	}

	taken = 0
	if base := topicTag(topic); base != "" {
		taken = add(base, domain.HashtagNiche, taken)
		for _, suffix := range a.cfg.Advisor.NicheSuffixes {
			taken = add(base+suffix, domain.HashtagNiche, taken)
		}
	}

	taken = 0
	for _, tag := range a.cfg.Advisor.Broad {
		taken = add(tag, domain.HashtagBroad, taken)
	}

	return out
}

// Categorize classifies a single hashtag against the config tables. Tags not
// found in any table are treated as niche.
func (a *Advisor) Categorize(tag string) domain.HashtagCategory {
	key := strings.ToLower(strings.TrimPrefix(tag, "#"))
	for _, tags := range a.cfg.Advisor.Industries {
		for _, t := range tags {
			if strings.ToLower(t) == key {
				return domain.HashtagIndustry
			}
		}
	}
	for _, t := range a.cfg.Advisor.Trending {
		if strings.ToLower(t) == key {
			return domain.HashtagTrending
		}
	}
	for _, t := range a.cfg.Advisor.Broad {
		if strings.ToLower(t) == key {
			return domain.HashtagBroad
		}
	}
	return domain.HashtagNiche
}

// RecommendTimes returns the best posting windows ordered by confidence.
// Hours are shifted by the industry's offset from the timing table. The
// timezone must be a valid IANA name; windows are expressed in it.
func (a *Advisor) RecommendTimes(timezone, industry string) ([]domain.TimeWindow, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, err, "unknown timezone %q", timezone)
	}

	shift := a.industryShift(industry)
	slots := make([]config.Slot, len(a.cfg.Timing.Slots))
	copy(slots, a.cfg.Timing.Slots)
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Confidence > slots[j].Confidence
	})

	n := len(slots)
	if n > maxWindows {
		n = maxWindows
	}
	windows := make([]domain.TimeWindow, 0, n)
	for _, s := range slots[:n] {
		hour := s.Hour + shift
		if hour < 0 {
			hour += 24
		}
		hour %= 24
		windows = append(windows, domain.TimeWindow{
			Day:        s.Day,
			Hour:       hour,
			Confidence: s.Confidence,
			Reason:     s.Reason,
		})
	}
	return windows, nil
}

// BestWindow returns the single highest-confidence window.
func (a *Advisor) BestWindow(timezone, industry string) (domain.TimeWindow, error) {
	windows, err := a.RecommendTimes(timezone, industry)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	return windows[0], nil
}

func (a *Advisor) industryShift(industry string) int {
	key := strings.ToLower(industry)
	if shift, ok := a.cfg.Timing.IndustryShift[key]; ok {
		return shift
	}
	return a.cfg.Timing.IndustryShift["default"]
}

func (a *Advisor) inferIndustry(topic string) string {
	lower := strings.ToLower(topic)
	keys := make([]string, 0, len(a.cfg.Advisor.Industries))
	for k := range a.cfg.Advisor.Industries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "default" {
			continue
		}
		if strings.Contains(lower, k) {
			return k
		}
	}
	return "default"
}

// tagMatchesTopic reports whether a trending tag relates to the topic by
// sharing a word of at least four characters.
func tagMatchesTopic(tag, topicLower string) bool {
	for _, word := range splitCamel(tag) {
		if len(word) >= 4 && strings.Contains(topicLower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// topicTag turns a free-text topic into a CamelCase hashtag base.
func topicTag(topic string) string {
	words := strings.Fields(nonAlnum.ReplaceAllString(topic, " "))
	if len(words) > 3 {
		words = words[:3]
	}
	var b strings.Builder
	for _, w := range words {
		if len(w) <= 2 && strings.ToUpper(w) != w {
			continue
		}
		if strings.ToUpper(w) == w {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + strings.ToLower(w[1:]))
	}
	return b.String()
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
