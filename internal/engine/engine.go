// Package engine implements the use cases behind the CLI and API: drafting,
// scoring, advising, scheduling, publishing, and planning.
package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"postline/internal/advisor"
	"postline/internal/config"
	"postline/internal/domain"
	"postline/internal/drafter"
	"postline/internal/events"
	"postline/internal/linkedin"
	"postline/internal/planner"
	"postline/internal/repo"
	"postline/internal/scoring"
	"postline/internal/store"
)

// Publisher is the outbound gateway used by PublishPost.
type Publisher interface {
	Publish(ctx context.Context, post domain.Post, creds linkedin.Credentials) (linkedin.PublishResult, error)
}

type Engine struct {
	Store     *store.Store
	Repo      repo.Repo
	Advisor   *advisor.Advisor
	Planner   *planner.Planner
	Config    *config.Config
	Events    events.Writer
	DB        *sql.DB
	Publisher Publisher
	Actor     string
	Log       zerolog.Logger
	Now       func() time.Time
}

// New wires an Engine over an opened store and config. db may be nil, in
// which case no events are journaled.
func New(st *store.Store, cfg *config.Config, db *sql.DB, log zerolog.Logger) Engine {
	adv := advisor.New(cfg)
	return Engine{
		Store:     st,
		Repo:      repo.Repo{Store: st},
		Advisor:   adv,
		Planner:   planner.New(cfg, adv),
		Config:    cfg,
		Events:    events.Writer{DB: db},
		DB:        db,
		Publisher: linkedin.NewClient(),
		Actor:     "local",
		Log:       log,
		Now:       time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// record journals an event. Journal failures are logged, never surfaced:
// the post collection is the source of truth.
func (e Engine) record(ctx context.Context, evtType, postID string, payload events.EventPayload) {
	if e.DB == nil {
		return
	}
	w := e.Events
	w.Now = e.Now
	if err := w.Record(ctx, evtType, postID, e.Actor, payload); err != nil {
		e.Log.Warn().Err(err).Str("event", evtType).Msg("event journal write failed")
	}
}

// DraftPost composes a new draft. When body is empty the content is
// generated from the topic in the given tone; otherwise body is used as-is.
// An empty tone falls back to the stored preference, then the config default.
func (e Engine) DraftPost(ctx context.Context, topic, tone, body string) (domain.Post, error) {
	if topic == "" {
		return domain.Post{}, domain.Errorf(domain.KindInvalidInput, "topic is required")
	}
	t, err := e.resolveTone(ctx, tone)
	if err != nil {
		return domain.Post{}, err
	}

	var content domain.Content
	if body != "" {
		content = drafter.FromCustom(body)
	} else {
		content = drafter.Compose(topic, t)
	}

	p := domain.NewPost(topic, t, content, e.now())
	if err := e.Repo.Save(ctx, p); err != nil {
		return domain.Post{}, err
	}
	e.record(ctx, events.TypeDrafted, p.ID, events.EventPayload{"topic": topic, "tone": string(t)})
	e.Log.Info().Str("post_id", p.ID).Str("tone", string(t)).Msg("draft created")
	return p, nil
}

// ScorePost recomputes the engagement score for a stored post.
func (e Engine) ScorePost(ctx context.Context, id string) (domain.EngagementScore, error) {
	p, err := e.Repo.Get(ctx, id)
	if err != nil {
		return domain.EngagementScore{}, err
	}
	return scoring.Score(p, e.Advisor.Categorize), nil
}

// UpdateContent replaces a draft's content and returns the new score.
func (e Engine) UpdateContent(ctx context.Context, id string, content domain.Content) (domain.Post, domain.EngagementScore, error) {
	p, err := e.Repo.Update(ctx, id, func(p *domain.Post) error {
		return p.UpdateContent(content, e.now())
	})
	if err != nil {
		return domain.Post{}, domain.EngagementScore{}, err
	}
	e.record(ctx, events.TypeContentUpdated, p.ID, nil)
	return p, scoring.Score(p, e.Advisor.Categorize), nil
}

// SuggestHashtags recommends tags for a topic. When postID is non-empty the
// suggested tags are also attached to that draft, deduplicated against any
// tags it already carries.
func (e Engine) SuggestHashtags(ctx context.Context, topic, industry, postID string) ([]domain.HashtagSuggestion, error) {
	if topic == "" && postID != "" {
		p, err := e.Repo.Get(ctx, postID)
		if err != nil {
			return nil, err
		}
		topic = p.Topic
	}
	if topic == "" {
		return nil, domain.Errorf(domain.KindInvalidInput, "topic is required")
	}
	suggestions := e.Advisor.SuggestHashtags(topic, industry)
	if postID == "" {
		return suggestions, nil
	}

	tags := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		tags = append(tags, s.Tag)
	}
	p, err := e.Repo.Update(ctx, postID, func(p *domain.Post) error {
		return p.AttachHashtags(append(p.Hashtags, tags...), e.now())
	})
	if err != nil {
		return nil, err
	}
	e.record(ctx, events.TypeHashtags, p.ID, events.EventPayload{"count": len(p.Hashtags)})
	return suggestions, nil
}

// OptimalTimes returns recommended posting windows.
func (e Engine) OptimalTimes(ctx context.Context, timezone, industry string) ([]domain.TimeWindow, error) {
	return e.Advisor.RecommendTimes(timezone, industry)
}

// SchedulePost marks a draft for future publication.
func (e Engine) SchedulePost(ctx context.Context, id string, at time.Time) (domain.Post, error) {
	p, err := e.Repo.Update(ctx, id, func(p *domain.Post) error {
		return p.Schedule(at, e.now())
	})
	if err != nil {
		return domain.Post{}, err
	}
	e.record(ctx, events.TypeScheduled, p.ID, events.EventPayload{"at": at.UTC().Format(time.RFC3339)})
	e.Log.Info().Str("post_id", p.ID).Time("at", at).Msg("post scheduled")
	return p, nil
}

// PublishPost pushes a post to the platform and records the transition.
// The remote call happens before the local transition, so a transport
// failure leaves the post untouched.
func (e Engine) PublishPost(ctx context.Context, id string) (domain.Post, error) {
	creds, err := linkedin.LoadCredentials(e.Store.Dir())
	if err != nil {
		return domain.Post{}, err
	}
	if creds.Expired(e.now()) {
		return domain.Post{}, domain.Errorf(domain.KindNotAuthenticated, "access token expired: run auth login again")
	}

	p, err := e.Repo.Get(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	dry := p
	if err := dry.Publish("", e.now()); err != nil {
		return domain.Post{}, err
	}

	result, err := e.Publisher.Publish(ctx, p, creds)
	if err != nil {
		return domain.Post{}, err
	}

	p, err = e.Repo.Update(ctx, id, func(p *domain.Post) error {
		return p.Publish(result.RemoteID, e.now())
	})
	if err != nil {
		return domain.Post{}, err
	}
	e.record(ctx, events.TypePublished, p.ID, events.EventPayload{"remote_id": result.RemoteID})
	e.Log.Info().Str("post_id", p.ID).Str("remote_id", result.RemoteID).Msg("post published")
	return p, nil
}

// PlanCalendar lays out a posting calendar.
func (e Engine) PlanCalendar(ctx context.Context, req planner.Request) ([]domain.CalendarEntry, error) {
	if req.Start.IsZero() {
		req.Start = e.now()
	}
	return e.Planner.Plan(req)
}

// ListPosts returns posts, optionally filtered by status. Order is creation
// time.
func (e Engine) ListPosts(ctx context.Context, status string) ([]domain.Post, error) {
	if status == "" {
		return e.Repo.ListAll(ctx)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return e.Repo.ListByStatus(ctx, st)
}

// GetPost fetches one post by ID.
func (e Engine) GetPost(ctx context.Context, id string) (domain.Post, error) {
	return e.Repo.Get(ctx, id)
}

// Settings is the effective user-facing configuration.
type Settings struct {
	DefaultTone   domain.Tone   `json:"default_tone"`
	ValidTones    []domain.Tone `json:"valid_tones"`
	Authenticated bool          `json:"authenticated"`
	PersonURN     string        `json:"person_urn,omitempty"`
	TokenExpires  *time.Time    `json:"token_expires,omitempty"`
}

// GetSettings reports the effective default tone and auth state. The stored
// preference wins over the config file default.
func (e Engine) GetSettings(ctx context.Context) (Settings, error) {
	s := Settings{DefaultTone: e.Config.Tone(), ValidTones: domain.ValidTones()}
	prefs, err := e.Store.LoadPrefs(ctx)
	if err != nil {
		return Settings{}, err
	}
	if prefs.DefaultTone != "" {
		s.DefaultTone = prefs.DefaultTone
	}
	if creds, err := linkedin.LoadCredentials(e.Store.Dir()); err == nil {
		s.Authenticated = !creds.Expired(e.now())
		s.PersonURN = creds.PersonURN
		exp := creds.ExpiresAt
		s.TokenExpires = &exp
	}
	return s, nil
}

// SetDefaultTone stores the preferred drafting tone.
func (e Engine) SetDefaultTone(ctx context.Context, tone string) (Settings, error) {
	t, err := domain.ParseTone(tone)
	if err != nil {
		return Settings{}, err
	}
	if err := e.Store.SavePrefs(ctx, store.Prefs{DefaultTone: t}); err != nil {
		return Settings{}, err
	}
	e.record(ctx, events.TypeToneChanged, "", events.EventPayload{"tone": string(t)})
	return e.GetSettings(ctx)
}

func (e Engine) resolveTone(ctx context.Context, tone string) (domain.Tone, error) {
	if tone != "" {
		return domain.ParseTone(tone)
	}
	prefs, err := e.Store.LoadPrefs(ctx)
	if err != nil {
		return "", err
	}
	if prefs.DefaultTone != "" {
		return prefs.DefaultTone, nil
	}
	return e.Config.Tone(), nil
}
