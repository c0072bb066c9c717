package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"postline/internal/domain"
	"postline/internal/store"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	workspace := t.TempDir()
	st, err := store.Open(workspace)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, workspace
}

func testPost(topic string) domain.Post {
	content := domain.Content{Hook: "Hook:", Body: "Body.", CallToAction: "Comment?"}
	return domain.NewPost(topic, domain.ToneProfessional, content, fixedNow)
}

func TestRoundTrip(t *testing.T) {
	st, _ := openStore(t)
	ctx := context.Background()
	p := testPost("first topic")

	err := st.MutatePosts(ctx, func(col store.Collection) error {
		col.Put(p)
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}

	col, err := st.LoadPosts(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, ok := col[p.ID]
	if !ok {
		t.Fatalf("post %s missing after save", p.ID)
	}
	if rec.Post.Topic != "first topic" || rec.Post.Status != domain.StatusDraft {
		t.Fatalf("loaded post = %+v", rec.Post)
	}
}

func TestSequentialSavesAllPersist(t *testing.T) {
	st, _ := openStore(t)
	ctx := context.Background()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		p := testPost("topic")
		ids = append(ids, p.ID)
		err := st.MutatePosts(ctx, func(col store.Collection) error {
			col.Put(p)
			return nil
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	col, err := st.LoadPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range ids {
		if _, ok := col[id]; !ok {
			t.Fatalf("post %s lost", id)
		}
	}
}

func TestMutateErrorLeavesFileUntouched(t *testing.T) {
	st, _ := openStore(t)
	ctx := context.Background()
	p := testPost("keep me")
	if err := st.MutatePosts(ctx, func(col store.Collection) error {
		col.Put(p)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	boom := domain.Errorf(domain.KindInvalidInput, "boom")
	err := st.MutatePosts(ctx, func(col store.Collection) error {
		delete(col, p.ID)
		return boom
	})
	if err == nil {
		t.Fatal("expected error from mutate fn")
	}

	col, err := st.LoadPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := col[p.ID]; !ok {
		t.Fatal("failed mutation must not be written")
	}
}

func TestUnknownFieldsSurviveRewrite(t *testing.T) {
	st, workspace := openStore(t)
	ctx := context.Background()
	p := testPost("compat")
	if err := st.MutatePosts(ctx, func(col store.Collection) error {
		col.Put(p)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// Simulate a newer version having written an extra field.
	path := filepath.Join(workspace, ".postline", "posts.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	raw[p.ID]["future_field"] = json.RawMessage(`"kept"`)
	data, err = json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := st.MutatePosts(ctx, func(col store.Collection) error {
		rec := col[p.ID]
		rec.Post.Topic = "renamed"
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw[p.ID]["future_field"]) != `"kept"` {
		t.Fatalf("unknown field dropped: %s", raw[p.ID]["future_field"])
	}
	if string(raw[p.ID]["topic"]) != `"renamed"` {
		t.Fatalf("known field not updated: %s", raw[p.ID]["topic"])
	}
}

func TestCorruptFileReportsStorageCorrupted(t *testing.T) {
	st, workspace := openStore(t)
	ctx := context.Background()
	path := filepath.Join(workspace, ".postline", "posts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := st.LoadPosts(ctx)
	if !domain.IsKind(err, domain.KindStorageCorrupted) {
		t.Fatalf("got %v, want storage_corrupted", err)
	}
	err = st.MutatePosts(ctx, func(store.Collection) error { return nil })
	if !domain.IsKind(err, domain.KindStorageCorrupted) {
		t.Fatalf("mutate: got %v, want storage_corrupted", err)
	}
}

func TestMissingFileIsEmptyCollection(t *testing.T) {
	st, _ := openStore(t)
	col, err := st.LoadPosts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(col) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(col))
	}
}

func TestCollectionPostsOrderedByCreation(t *testing.T) {
	col := store.Collection{}
	a := testPost("a")
	b := testPost("b")
	b.CreatedAt = fixedNow.Add(-time.Hour)
	col.Put(a)
	col.Put(b)
	posts := col.Posts()
	if len(posts) != 2 || posts[0].ID != b.ID {
		t.Fatalf("order = %v", posts)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	st, _ := openStore(t)
	ctx := context.Background()

	prefs, err := st.LoadPrefs(ctx)
	if err != nil {
		t.Fatalf("load empty prefs: %v", err)
	}
	if prefs.DefaultTone != "" {
		t.Fatalf("empty prefs = %+v", prefs)
	}

	if err := st.SavePrefs(ctx, store.Prefs{DefaultTone: domain.ToneCasual}); err != nil {
		t.Fatal(err)
	}
	prefs, err = st.LoadPrefs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if prefs.DefaultTone != domain.ToneCasual {
		t.Fatalf("tone = %s, want casual", prefs.DefaultTone)
	}
}
