package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"postline/internal/domain"
)

// Config models postline.yml. The hashtag and timing tables are heuristics,
// not learned data, so they live here as configuration.
type Config struct {
	DefaultTone string `yaml:"default_tone"`

	Advisor struct {
		Industries    map[string][]string `yaml:"industries"`
		Trending      []string            `yaml:"trending"`
		NicheSuffixes []string            `yaml:"niche_suffixes"`
		Broad         []string            `yaml:"broad"`
		PerCategory   int                 `yaml:"per_category"`
	} `yaml:"advisor"`

	Timing struct {
		Slots         []Slot         `yaml:"slots"`
		IndustryShift map[string]int `yaml:"industry_shift"`
	} `yaml:"timing"`

	Calendar struct {
		SkipWeekends bool `yaml:"skip_weekends"`
	} `yaml:"calendar"`
}

// Slot is one row of the peak-engagement table.
type Slot struct {
	Day        string  `yaml:"day"`
	Hour       int     `yaml:"hour"`
	Confidence float64 `yaml:"confidence"`
	Reason     string  `yaml:"reason"`
}

// Load reads and validates config from the workspace, falling back to the
// built-in defaults when the file is absent.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "postline.yml")
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.DefaultTone != "" {
		if _, err := domain.ParseTone(c.DefaultTone); err != nil {
			return fmt.Errorf("config.default_tone: %w", err)
		}
	}
	if len(c.Advisor.Industries) == 0 {
		return fmt.Errorf("config.advisor.industries is required")
	}
	if _, ok := c.Advisor.Industries["default"]; !ok {
		return fmt.Errorf("config.advisor.industries must include default")
	}
	for industry, tags := range c.Advisor.Industries {
		if len(tags) == 0 {
			return fmt.Errorf("industry %s has no hashtags", industry)
		}
	}
	if len(c.Advisor.Trending) == 0 {
		return fmt.Errorf("config.advisor.trending is required")
	}
	if len(c.Advisor.Broad) == 0 {
		return fmt.Errorf("config.advisor.broad is required")
	}
	if c.Advisor.PerCategory <= 0 {
		return fmt.Errorf("config.advisor.per_category must be positive")
	}
	if len(c.Timing.Slots) == 0 {
		return fmt.Errorf("config.timing.slots is required")
	}
	for i, s := range c.Timing.Slots {
		if s.Day == "" {
			return fmt.Errorf("timing slot %d has empty day", i)
		}
		if s.Hour < 0 || s.Hour > 23 {
			return fmt.Errorf("timing slot %d hour %d out of range", i, s.Hour)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("timing slot %d confidence %v out of range", i, s.Confidence)
		}
	}
	return nil
}

// Tone returns the configured default tone.
func (c *Config) Tone() domain.Tone {
	if c.DefaultTone == "" {
		return domain.ToneProfessional
	}
	return domain.Tone(c.DefaultTone)
}

// Default returns the built-in Config.
func Default() *Config {
	cfg, err := FromYAML([]byte(defaultTemplate))
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `default_tone: professional

advisor:
  per_category: 2
  industries:
    technology: [Technology, Tech, Innovation, Digital, Software]
    marketing: [Marketing, DigitalMarketing, ContentMarketing, Branding, SEO]
    leadership: [Leadership, Management, ExecutiveLeadership, LeadershipDevelopment]
    career: [CareerDevelopment, CareerGrowth, JobSearch, ProfessionalDevelopment]
    startup: [Startup, Entrepreneurship, StartupLife, VentureCapital, Founders]
    ai: [ArtificialIntelligence, MachineLearning, AI, DeepLearning, GenerativeAI]
    finance: [Finance, FinTech, Investment, Banking, FinancialServices]
    healthcare: [Healthcare, HealthTech, DigitalHealth, MedTech]
    default: [Business, Innovation, Growth, Strategy, ProfessionalDevelopment]
  trending:
    - FutureOfWork
    - RemoteWork
    - AIInBusiness
    - Sustainability
    - DEI
    - PersonalBranding
    - ThoughtLeadership
    - WorkLifeBalance
  niche_suffixes: [Tips, Insights, Trends, Strategy, Community]
  broad: [LinkedIn, Networking, Success, Motivation, Learning]

timing:
  slots:
    - day: Tuesday
      hour: 9
      confidence: 0.92
      reason: "Peak activity: professionals check feeds after morning meetings."
    - day: Wednesday
      hour: 10
      confidence: 0.90
      reason: "Mid-week engagement peak: highest comment and share rates."
    - day: Thursday
      hour: 12
      confidence: 0.88
      reason: "Lunch break browsing: strong engagement during midday pause."
    - day: Tuesday
      hour: 13
      confidence: 0.85
      reason: "Early afternoon: decision-makers active before end-of-day wrap-up."
    - day: Wednesday
      hour: 9
      confidence: 0.84
      reason: "Morning professional browsing window on the busiest day."
    - day: Thursday
      hour: 10
      confidence: 0.82
      reason: "Pre-weekend planning: professionals seek insights for the week ahead."
  industry_shift:
    technology: 0
    marketing: 0
    finance: -1
    healthcare: 1
    startup: 1
    default: 0

calendar:
  skip_weekends: true
`
