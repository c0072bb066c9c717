package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a post's lifecycle state. Transitions are forward-only:
// draft -> scheduled -> published, or draft -> published directly.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusPublished:
		return StatusPublished, nil
	}
	return "", Errorf(KindInvalidInput, "invalid status %q; valid statuses: draft, scheduled, published", s)
}

// Post is the aggregate for one social update through its lifecycle.
// Mutation goes through the named transition methods only; posts are never
// deleted, published is the terminal marker.
type Post struct {
	ID            string     `json:"id"`
	Topic         string     `json:"topic"`
	Tone          Tone       `json:"tone"`
	Content       Content    `json:"content"`
	Hashtags      []string   `json:"hashtags,omitempty"`
	Status        Status     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	PublishedTime *time.Time `json:"published_time,omitempty"`
	RemoteID      string     `json:"remote_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewPost creates a draft with a generated ID.
func NewPost(topic string, tone Tone, content Content, now time.Time) Post {
	now = now.UTC()
	return Post{
		ID:        uuid.New().String(),
		Topic:     topic,
		Tone:      tone,
		Content:   content,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Schedule transitions draft -> scheduled. The time must be strictly in the
// future relative to now.
func (p *Post) Schedule(at, now time.Time) error {
	if p.Status != StatusDraft {
		return Errorf(KindInvalidTransition, "cannot schedule post in %q status; must be draft", p.Status)
	}
	if !at.After(now) {
		return Errorf(KindInvalidSchedule, "scheduled time %s is not in the future", at.UTC().Format(time.RFC3339))
	}
	at = at.UTC()
	p.Status = StatusScheduled
	p.ScheduledTime = &at
	p.UpdatedAt = now.UTC()
	return nil
}

// Publish transitions draft or scheduled -> published. The scheduled time, if
// any, is retained for audit.
func (p *Post) Publish(remoteID string, now time.Time) error {
	if p.Status == StatusPublished {
		return Errorf(KindInvalidTransition, "post is already published")
	}
	now = now.UTC()
	p.Status = StatusPublished
	p.PublishedTime = &now
	if remoteID != "" {
		p.RemoteID = remoteID
	}
	p.UpdatedAt = now
	return nil
}

// UpdateContent replaces the content of a draft. Scheduled and published
// content is immutable to preserve what was (or will be) actually sent.
func (p *Post) UpdateContent(c Content, now time.Time) error {
	if p.Status != StatusDraft {
		return Errorf(KindInvalidTransition, "cannot update content of a %s post", p.Status)
	}
	p.Content = c
	p.UpdatedAt = now.UTC()
	return nil
}

// AttachHashtags replaces the hashtag set of a draft. Tags are deduplicated
// case-insensitively, first occurrence wins, order preserved.
func (p *Post) AttachHashtags(tags []string, now time.Time) error {
	if p.Status != StatusDraft {
		return Errorf(KindInvalidTransition, "cannot attach hashtags to a %s post", p.Status)
	}
	p.Hashtags = DedupeHashtags(tags)
	p.UpdatedAt = now.UTC()
	return nil
}

// DedupeHashtags removes case-insensitive duplicates, keeping the first
// spelling and the original order. Empty entries are dropped.
func DedupeHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(t, "#"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
