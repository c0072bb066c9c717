package scoring_test

import (
	"strings"
	"testing"
	"time"

	"postline/internal/advisor"
	"postline/internal/config"
	"postline/internal/domain"
	"postline/internal/scoring"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func buildPost(body string, hashtags []string) domain.Post {
	content := domain.Content{
		Hook:         "Most engineers never learn this about queues:",
		Body:         body,
		CallToAction: "Share your experience in the comments?",
	}
	p := domain.NewPost("queues", domain.ToneProfessional, content, fixedNow)
	p.Hashtags = hashtags
	return p
}

func idealBody() string {
	para := strings.Repeat("Short insight sentence about systems. ", 4)
	return strings.Join([]string{para, para, para, para, para, "- point one\n- point two"}, "\n\n")
}

func TestScoreIsDeterministic(t *testing.T) {
	p := buildPost(idealBody(), []string{"Technology", "FutureOfWork", "QueueTips"})
	a := scoring.Score(p, nil)
	b := scoring.Score(p, nil)
	if a.Overall != b.Overall {
		t.Fatalf("overall %v != %v", a.Overall, b.Overall)
	}
	if len(a.Suggestions) != len(b.Suggestions) {
		t.Fatalf("suggestions differ: %v vs %v", a.Suggestions, b.Suggestions)
	}
	for i := range a.Suggestions {
		if a.Suggestions[i] != b.Suggestions[i] {
			t.Fatalf("suggestion order changed: %v vs %v", a.Suggestions, b.Suggestions)
		}
	}
}

func TestOverallStaysInRange(t *testing.T) {
	for _, p := range []domain.Post{
		buildPost("", nil),
		buildPost(idealBody(), []string{"A", "B", "C", "D"}),
		buildPost(strings.Repeat("x", 5000), []string{"A", "B", "C", "D", "E", "F", "G"}),
	} {
		s := scoring.Score(p, nil)
		if s.Overall < 0 || s.Overall > 100 {
			t.Fatalf("overall %v out of range", s.Overall)
		}
	}
}

func TestHashtagBandBeatsNone(t *testing.T) {
	adv := advisor.New(config.Default())
	none := scoring.Score(buildPost(idealBody(), nil), adv.Categorize)
	band := scoring.Score(buildPost(idealBody(), []string{"Technology", "FutureOfWork", "QueueTips"}), adv.Categorize)
	if band.Breakdown[domain.DimHashtags] <= none.Breakdown[domain.DimHashtags] {
		t.Fatalf("hashtag dim: band %v should beat none %v",
			band.Breakdown[domain.DimHashtags], none.Breakdown[domain.DimHashtags])
	}
	if band.Overall <= none.Overall {
		t.Fatalf("overall: band %v should beat none %v", band.Overall, none.Overall)
	}
}

func TestCategorySpreadRewarded(t *testing.T) {
	adv := advisor.New(config.Default())
	mixed := scoring.Score(buildPost(idealBody(), []string{"Technology", "FutureOfWork", "LinkedIn"}), adv.Categorize)
	single := scoring.Score(buildPost(idealBody(), []string{"Technology", "Tech", "Innovation"}), adv.Categorize)
	if mixed.Breakdown[domain.DimHashtags] <= single.Breakdown[domain.DimHashtags] {
		t.Fatalf("mixed %v should beat single-category %v",
			mixed.Breakdown[domain.DimHashtags], single.Breakdown[domain.DimHashtags])
	}
}

func TestSuggestionsOrderedByImpact(t *testing.T) {
	// Hook missing entirely (weight .25, score 0) must outrank a slightly
	// short body (weight .20, moderate score).
	p := buildPost(strings.Repeat("word ", 160), []string{"A", "B", "C"})
	p.Content.Hook = ""
	s := scoring.Score(p, nil)
	if len(s.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if !strings.Contains(s.Suggestions[0], "hook") {
		t.Fatalf("first suggestion should target the hook, got %q", s.Suggestions[0])
	}
}

func TestCleanPostHasFewSuggestions(t *testing.T) {
	p := buildPost(idealBody(), []string{"Technology", "FutureOfWork", "QueueTips"})
	adv := advisor.New(config.Default())
	s := scoring.Score(p, adv.Categorize)
	if s.Overall < 80 {
		t.Fatalf("well-formed post scored %v", s.Overall)
	}
	if len(s.Suggestions) != 0 {
		t.Fatalf("unexpected suggestions: %v", s.Suggestions)
	}
}

func TestEmptyPostGetsLowScoreAndManySuggestions(t *testing.T) {
	p := domain.NewPost("x", domain.ToneProfessional, domain.Content{}, fixedNow)
	s := scoring.Score(p, nil)
	if s.Overall > 40 {
		t.Fatalf("empty post scored %v", s.Overall)
	}
	if len(s.Suggestions) < 3 {
		t.Fatalf("expected suggestions for every weak dimension, got %v", s.Suggestions)
	}
}
