// Package scoring estimates the engagement potential of a post. Scoring is
// deterministic and stateless: the same post always yields the same score,
// and nothing is persisted.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"postline/internal/domain"
)

// Tunable thresholds. The dimension shape is fixed; these numbers are not.
const (
	idealMinLength = 1000
	idealMaxLength = 1500
	veryShort      = 200
	veryLong       = 3000

	minHashtags = 3
	maxHashtags = 5

	// A dimension scoring below this generates suggestions.
	passThreshold = 70.0
)

// Dimension weights. They sum to 1 so the overall score stays in [0,100].
var weights = map[string]float64{
	domain.DimLength:      0.20,
	domain.DimReadability: 0.25,
	domain.DimHook:        0.25,
	domain.DimHashtags:    0.15,
	domain.DimCTA:         0.15,
}

// dimensionOrder breaks priority ties deterministically.
var dimensionOrder = []string{
	domain.DimHook,
	domain.DimReadability,
	domain.DimLength,
	domain.DimHashtags,
	domain.DimCTA,
}

var powerWords = []string{"learn", "discover", "secret", "mistake", "never", "always", "most", "why"}

var actionWords = []string{"share", "comment", "follow", "save", "like", "tell", "drop", "thoughts"}

var listLinePattern = regexp.MustCompile(`^\s*[\d\-\*•]`)

// Categorizer classifies a hashtag string for the distribution check.
type Categorizer func(tag string) domain.HashtagCategory

// Score evaluates a post across all dimensions and returns the weighted
// overall score with per-dimension breakdown and ordered suggestions.
// categorize may be nil, in which case hashtag spread is not rewarded.
func Score(p domain.Post, categorize Categorizer) domain.EngagementScore {
	var dims []dimResult
	dims = append(dims,
		scoreLength(p.Content.Body),
		scoreReadability(p.Content.Body),
		scoreHook(p.Content.Hook),
		scoreHashtags(p.Hashtags, categorize),
		scoreCTA(p.Content.CallToAction),
	)

	overall := 0.0
	breakdown := make(map[string]float64, len(dims))
	for _, d := range dims {
		breakdown[d.name] = round1(d.score)
		overall += d.score * weights[d.name]
	}
	overall = math.Max(0, math.Min(100, overall))

	return domain.EngagementScore{
		Overall:     round1(overall),
		Breakdown:   breakdown,
		Suggestions: orderSuggestions(dims),
	}
}

type dimResult struct {
	name        string
	score       float64
	suggestions []string
}

// orderSuggestions ranks failing dimensions by weight x shortfall, most
// impactful first, with a fixed order for ties.
func orderSuggestions(dims []dimResult) []string {
	rank := make(map[string]int, len(dimensionOrder))
	for i, name := range dimensionOrder {
		rank[name] = i
	}
	failing := make([]dimResult, 0, len(dims))
	for _, d := range dims {
		if d.score < passThreshold && len(d.suggestions) > 0 {
			failing = append(failing, d)
		}
	}
	sort.SliceStable(failing, func(i, j int) bool {
		pi := weights[failing[i].name] * (passThreshold - failing[i].score)
		pj := weights[failing[j].name] * (passThreshold - failing[j].score)
		if pi != pj {
			return pi > pj
		}
		return rank[failing[i].name] < rank[failing[j].name]
	})
	var out []string
	for _, d := range failing {
		out = append(out, d.suggestions...)
	}
	return out
}

func scoreLength(body string) dimResult {
	d := dimResult{name: domain.DimLength}
	length := len(body)
	switch {
	case length >= idealMinLength && length <= idealMaxLength:
		d.score = 100
	case length < veryShort:
		d.score = 20
		d.suggestions = append(d.suggestions, "Post is too short. Aim for 1000-1500 characters.")
	case length < idealMinLength:
		d.score = 50 + float64(length)/float64(idealMinLength)*40
		d.suggestions = append(d.suggestions, "Post is short of the ideal 1000-1500 character range.")
	case length > veryLong:
		d.score = 40
		d.suggestions = append(d.suggestions, "Post is very long. Consider trimming to under 1500 characters.")
	default:
		d.score = 70
		d.suggestions = append(d.suggestions, "Post is slightly long. Ideal length is 1000-1500 characters.")
	}
	return d
}

func scoreReadability(body string) dimResult {
	d := dimResult{name: domain.DimReadability, score: 60}
	lines := strings.Split(body, "\n")
	var nonEmpty []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}
	if strings.Count(body, "\n\n") >= 3 {
		d.score += 20
	} else {
		d.suggestions = append(d.suggestions, "Add more line breaks between paragraphs for better readability.")
	}
	long := false
	for _, line := range nonEmpty {
		if len(line) > 200 {
			long = true
			break
		}
	}
	if !long {
		d.score += 20
	} else {
		d.suggestions = append(d.suggestions, "Break up long paragraphs. Keep each under 200 characters.")
	}
	for _, line := range nonEmpty {
		if listLinePattern.MatchString(line) {
			d.score += 10
			break
		}
	}
	d.score = math.Min(d.score, 100)
	return d
}

func scoreHook(hook string) dimResult {
	d := dimResult{name: domain.DimHook}
	if hook == "" {
		d.suggestions = append(d.suggestions, "Add a compelling opening hook to grab attention.")
		return d
	}
	d.score = 50
	if len(hook) >= 20 {
		d.score += 15
	} else {
		d.suggestions = append(d.suggestions, "Make your hook longer and more compelling.")
	}
	if len(hook) <= 150 {
		d.score += 10
	}
	lower := strings.ToLower(hook)
	for _, w := range powerWords {
		if strings.Contains(lower, w) {
			d.score += 15
			break
		}
	}
	if strings.HasSuffix(hook, ":") || strings.HasSuffix(hook, "?") {
		d.score += 10
	} else {
		d.suggestions = append(d.suggestions, "End your hook with ':' or '?' to create curiosity.")
	}
	d.score = math.Min(d.score, 100)
	return d
}

func scoreHashtags(tags []string, categorize Categorizer) dimResult {
	d := dimResult{name: domain.DimHashtags}
	count := len(tags)
	switch {
	case count == 0:
		d.score = 20
		d.suggestions = append(d.suggestions, "Add 3-5 relevant hashtags to increase discoverability.")
	case count < minHashtags:
		d.score = 60
		d.suggestions = append(d.suggestions, "Add more hashtags. Aim for 3-5 total.")
	case count > maxHashtags:
		d.score = 50
		d.suggestions = append(d.suggestions, "Too many hashtags. Keep to 3-5 maximum.")
	default:
		if categorySpread(tags, categorize) >= 2 {
			d.score = 100
		} else {
			d.score = 85
			d.suggestions = append(d.suggestions, "Mix hashtag categories: combine industry tags with niche or trending ones.")
		}
	}
	return d
}

func categorySpread(tags []string, categorize Categorizer) int {
	if categorize == nil {
		return 1
	}
	seen := map[domain.HashtagCategory]struct{}{}
	for _, t := range tags {
		seen[categorize(t)] = struct{}{}
	}
	return len(seen)
}

func scoreCTA(cta string) dimResult {
	d := dimResult{name: domain.DimCTA}
	if cta == "" {
		d.suggestions = append(d.suggestions, "Add a call to action to drive engagement.")
		return d
	}
	d.score = 50
	lower := strings.ToLower(cta)
	found := false
	for _, w := range actionWords {
		if strings.Contains(lower, w) {
			found = true
			break
		}
	}
	if found {
		d.score += 30
	} else {
		d.suggestions = append(d.suggestions, "Include an action word in your CTA (share, comment, follow).")
	}
	if strings.Contains(cta, "?") {
		d.score += 20
	} else {
		d.suggestions = append(d.suggestions, "Ask a question in your CTA to encourage responses.")
	}
	return d
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
