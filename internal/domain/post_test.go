package domain_test

import (
	"testing"
	"time"

	"postline/internal/domain"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newDraft(t *testing.T) domain.Post {
	t.Helper()
	content := domain.Content{Hook: "A hook:", Body: "Body text.", CallToAction: "Share your thoughts?"}
	return domain.NewPost("go concurrency", domain.ToneProfessional, content, fixedNow)
}

func TestNewPostDefaults(t *testing.T) {
	p := newDraft(t)
	if p.ID == "" {
		t.Fatal("expected generated id")
	}
	if p.Status != domain.StatusDraft {
		t.Fatalf("status = %s, want draft", p.Status)
	}
	if !p.CreatedAt.Equal(fixedNow) || !p.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("timestamps = %v / %v, want %v", p.CreatedAt, p.UpdatedAt, fixedNow)
	}
}

func TestScheduleRequiresFutureTime(t *testing.T) {
	p := newDraft(t)
	if err := p.Schedule(fixedNow.Add(-time.Hour), fixedNow); !domain.IsKind(err, domain.KindInvalidSchedule) {
		t.Fatalf("past time: got %v, want invalid_schedule", err)
	}
	if err := p.Schedule(fixedNow, fixedNow); !domain.IsKind(err, domain.KindInvalidSchedule) {
		t.Fatalf("equal time: got %v, want invalid_schedule", err)
	}
	if err := p.Schedule(fixedNow.Add(time.Hour), fixedNow); err != nil {
		t.Fatalf("future time: %v", err)
	}
	if p.Status != domain.StatusScheduled {
		t.Fatalf("status = %s, want scheduled", p.Status)
	}
}

func TestScheduleOnlyFromDraft(t *testing.T) {
	p := newDraft(t)
	if err := p.Publish("urn:li:share:1", fixedNow); err != nil {
		t.Fatalf("publish: %v", err)
	}
	err := p.Schedule(fixedNow.Add(time.Hour), fixedNow)
	if !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("got %v, want invalid_transition", err)
	}
}

func TestPublishFromDraftAndScheduled(t *testing.T) {
	p := newDraft(t)
	if err := p.Publish("urn:li:share:1", fixedNow); err != nil {
		t.Fatalf("publish draft: %v", err)
	}
	if p.Status != domain.StatusPublished || p.RemoteID != "urn:li:share:1" {
		t.Fatalf("post = %+v", p)
	}

	q := newDraft(t)
	at := fixedNow.Add(time.Hour)
	if err := q.Schedule(at, fixedNow); err != nil {
		t.Fatal(err)
	}
	if err := q.Publish("urn:li:share:2", fixedNow.Add(2*time.Hour)); err != nil {
		t.Fatalf("publish scheduled: %v", err)
	}
	if q.ScheduledTime == nil {
		t.Fatal("scheduled time should be retained after publish")
	}
}

func TestPublishTwiceFails(t *testing.T) {
	p := newDraft(t)
	if err := p.Publish("urn:li:share:1", fixedNow); err != nil {
		t.Fatal(err)
	}
	if err := p.Publish("urn:li:share:2", fixedNow); !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("got %v, want invalid_transition", err)
	}
}

func TestContentFrozenAfterDraft(t *testing.T) {
	p := newDraft(t)
	if err := p.Publish("urn:li:share:1", fixedNow); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateContent(domain.Content{Body: "new"}, fixedNow); !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("update content: got %v, want invalid_transition", err)
	}
	if err := p.AttachHashtags([]string{"Go"}, fixedNow); !domain.IsKind(err, domain.KindInvalidTransition) {
		t.Fatalf("attach hashtags: got %v, want invalid_transition", err)
	}
}

func TestDedupeHashtags(t *testing.T) {
	got := domain.DedupeHashtags([]string{"GoLang", "#golang", "Tech", " ", "GOLANG", "tech"})
	want := []string{"GoLang", "Tech"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseTone(t *testing.T) {
	if _, err := domain.ParseTone(" Professional "); err != nil {
		t.Fatalf("normalized tone: %v", err)
	}
	if _, err := domain.ParseTone("sarcastic"); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("got %v, want invalid_input", err)
	}
}
