package advisor_test

import (
	"strings"
	"testing"

	"postline/internal/advisor"
	"postline/internal/config"
	"postline/internal/domain"
)

func newAdvisor(t *testing.T) *advisor.Advisor {
	t.Helper()
	return advisor.New(config.Default())
}

func TestSuggestHashtagsCoversIndustryAndNiche(t *testing.T) {
	adv := newAdvisor(t)
	suggestions := adv.SuggestHashtags("AI trends", "technology")
	if len(suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	counts := map[domain.HashtagCategory]int{}
	for _, s := range suggestions {
		counts[s.Category]++
	}
	if counts[domain.HashtagIndustry] == 0 {
		t.Fatalf("expected industry tags, got %v", suggestions)
	}
	if counts[domain.HashtagNiche] == 0 {
		t.Fatalf("expected niche tags, got %v", suggestions)
	}
}

func TestSuggestHashtagsNoDuplicates(t *testing.T) {
	adv := newAdvisor(t)
	suggestions := adv.SuggestHashtags("technology leadership", "technology")
	seen := map[string]bool{}
	for _, s := range suggestions {
		key := strings.ToLower(s.Tag)
		if seen[key] {
			t.Fatalf("duplicate tag %s in %v", s.Tag, suggestions)
		}
		seen[key] = true
	}
}

func TestSuggestHashtagsRespectsPerCategoryCap(t *testing.T) {
	cfg := config.Default()
	adv := advisor.New(cfg)
	suggestions := adv.SuggestHashtags("remote work and the future of work", "marketing")
	counts := map[domain.HashtagCategory]int{}
	for _, s := range suggestions {
		counts[s.Category]++
	}
	for cat, n := range counts {
		if n > cfg.Advisor.PerCategory {
			t.Fatalf("category %s has %d tags, cap is %d", cat, n, cfg.Advisor.PerCategory)
		}
	}
}

func TestSuggestHashtagsInfersIndustryFromTopic(t *testing.T) {
	adv := newAdvisor(t)
	suggestions := adv.SuggestHashtags("scaling a startup team", "")
	found := false
	for _, s := range suggestions {
		if s.Tag == "Startup" || s.Tag == "Entrepreneurship" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected startup industry tags, got %v", suggestions)
	}
}

func TestSuggestHashtagsUnknownIndustryFallsBack(t *testing.T) {
	adv := newAdvisor(t)
	suggestions := adv.SuggestHashtags("whatever", "basket-weaving")
	found := false
	for _, s := range suggestions {
		if s.Tag == "Business" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected default industry tags, got %v", suggestions)
	}
}

func TestCategorize(t *testing.T) {
	adv := newAdvisor(t)
	cases := map[string]domain.HashtagCategory{
		"Technology":   domain.HashtagIndustry,
		"#technology":  domain.HashtagIndustry,
		"FutureOfWork": domain.HashtagTrending,
		"LinkedIn":     domain.HashtagBroad,
		"GoTips":       domain.HashtagNiche,
	}
	for tag, want := range cases {
		if got := adv.Categorize(tag); got != want {
			t.Errorf("Categorize(%q) = %s, want %s", tag, got, want)
		}
	}
}

func TestRecommendTimesOrderedByConfidence(t *testing.T) {
	adv := newAdvisor(t)
	windows, err := adv.RecommendTimes("UTC", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].Confidence > windows[i-1].Confidence {
			t.Fatalf("windows not ordered: %v", windows)
		}
	}
	if windows[0].Day != "Tuesday" || windows[0].Hour != 9 {
		t.Fatalf("best window = %+v, want Tuesday 9", windows[0])
	}
}

func TestRecommendTimesAppliesIndustryShift(t *testing.T) {
	adv := newAdvisor(t)
	base, err := adv.RecommendTimes("UTC", "technology")
	if err != nil {
		t.Fatal(err)
	}
	shifted, err := adv.RecommendTimes("UTC", "finance")
	if err != nil {
		t.Fatal(err)
	}
	if shifted[0].Hour != base[0].Hour-1 {
		t.Fatalf("finance hour %d, technology hour %d, want -1 shift", shifted[0].Hour, base[0].Hour)
	}
}

func TestRecommendTimesRejectsBadTimezone(t *testing.T) {
	adv := newAdvisor(t)
	_, err := adv.RecommendTimes("Not/AZone", "")
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("got %v, want invalid_input", err)
	}
}

func TestRecommendTimesDeterministic(t *testing.T) {
	adv := newAdvisor(t)
	a, _ := adv.RecommendTimes("UTC", "startup")
	b, _ := adv.RecommendTimes("UTC", "startup")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("windows differ between calls: %v vs %v", a, b)
		}
	}
}
