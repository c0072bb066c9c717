package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"postline/internal/config"
	"postline/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Tone() != domain.ToneProfessional {
		t.Fatalf("default tone = %s", cfg.Tone())
	}
	if cfg.Advisor.PerCategory <= 0 {
		t.Fatal("per_category must be set")
	}
	if !cfg.Calendar.SkipWeekends {
		t.Fatal("default calendar should skip weekends")
	}
}

func TestLoadFallsBackWhenFileMissing(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Timing.Slots) == 0 {
		t.Fatal("fallback config missing timing slots")
	}
}

func TestLoadReadsWorkspaceFile(t *testing.T) {
	workspace := t.TempDir()
	yml := `default_tone: casual
advisor:
  per_category: 1
  industries:
    default: [Business]
  trending: [FutureOfWork]
  broad: [LinkedIn]
timing:
  slots:
    - day: Monday
      hour: 8
      confidence: 0.5
      reason: test
calendar:
  skip_weekends: false
`
	if err := os.WriteFile(filepath.Join(workspace, "postline.yml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tone() != domain.ToneCasual {
		t.Fatalf("tone = %s, want casual", cfg.Tone())
	}
	if cfg.Calendar.SkipWeekends {
		t.Fatal("skip_weekends should be false")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := map[string]func(*config.Config){
		"bad tone":        func(c *config.Config) { c.DefaultTone = "sarcastic" },
		"no industries":   func(c *config.Config) { c.Advisor.Industries = nil },
		"no default":      func(c *config.Config) { delete(c.Advisor.Industries, "default") },
		"empty industry":  func(c *config.Config) { c.Advisor.Industries["technology"] = nil },
		"no trending":     func(c *config.Config) { c.Advisor.Trending = nil },
		"no broad":        func(c *config.Config) { c.Advisor.Broad = nil },
		"zero cap":        func(c *config.Config) { c.Advisor.PerCategory = 0 },
		"no slots":        func(c *config.Config) { c.Timing.Slots = nil },
		"hour range":      func(c *config.Config) { c.Timing.Slots[0].Hour = 24 },
		"confidence >1":   func(c *config.Config) { c.Timing.Slots[0].Confidence = 1.5 },
		"slot empty day":  func(c *config.Config) { c.Timing.Slots[0].Day = "" },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestGenerateDefaultParses(t *testing.T) {
	if _, err := config.FromYAML([]byte(config.GenerateDefault())); err != nil {
		t.Fatalf("generated default does not parse: %v", err)
	}
}
