package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postline/internal/domain"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func draftWithBody(body string, tags []string) domain.Post {
	p := domain.NewPost("t", domain.ToneProfessional, domain.Content{Body: body}, fixedNow)
	p.Hashtags = tags
	return p
}

func TestBuildCommentaryAppendsHashtags(t *testing.T) {
	p := draftWithBody("The body.", []string{"GoLang", "#Tech"})
	got := BuildCommentary(p)
	want := "The body.\n\n#GoLang #Tech"
	if got != want {
		t.Fatalf("commentary = %q, want %q", got, want)
	}
}

func TestBuildCommentaryNoHashtags(t *testing.T) {
	p := draftWithBody("Just the body.", nil)
	if got := BuildCommentary(p); got != "Just the body." {
		t.Fatalf("commentary = %q", got)
	}
}

func TestPublishRejectsOverlongCommentary(t *testing.T) {
	c := NewClient()
	p := draftWithBody(strings.Repeat("x", maxCommentary+1), nil)
	_, err := c.Publish(context.Background(), p, Credentials{AccessToken: "tok", PersonURN: "urn:li:person:me"})
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("got %v, want invalid_input", err)
	}
}

func TestPublishSendsRequiredHeaders(t *testing.T) {
	var gotHeaders http.Header
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("x-restli-id", "urn:li:share:7")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	p := draftWithBody("Body.", []string{"Go"})
	result, err := c.Publish(context.Background(), p, Credentials{AccessToken: "tok", PersonURN: "urn:li:person:me"})
	if err != nil {
		t.Fatal(err)
	}
	if result.RemoteID != "urn:li:share:7" {
		t.Fatalf("remote id = %q", result.RemoteID)
	}
	if gotHeaders.Get("Authorization") != "Bearer tok" {
		t.Fatalf("auth header = %q", gotHeaders.Get("Authorization"))
	}
	if gotHeaders.Get("X-Restli-Protocol-Version") != "2.0.0" || gotHeaders.Get("Linkedin-Version") == "" {
		t.Fatalf("headers = %v", gotHeaders)
	}
	if gotPayload["author"] != "urn:li:person:me" || gotPayload["lifecycleState"] != "PUBLISHED" {
		t.Fatalf("payload = %v", gotPayload)
	}
}

func TestPublishNon201IsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	_, err := c.Publish(context.Background(), draftWithBody("Body.", nil), Credentials{AccessToken: "tok"})
	if !domain.IsKind(err, domain.KindTransportFailure) {
		t.Fatalf("got %v, want transport_failure", err)
	}
}

func TestGetProfileURN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sub": "abc123"})
	}))
	defer srv.Close()

	c := NewClient()
	c.UserURL = srv.URL
	urn, err := c.GetProfileURN(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if urn != "urn:li:person:abc123" {
		t.Fatalf("urn = %q", urn)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	creds := Credentials{AccessToken: "tok", ExpiresAt: fixedNow.Add(time.Hour), PersonURN: "urn:li:person:me"}
	if err := SaveCredentials(dir, creds); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCredentials(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "tok" || got.PersonURN != creds.PersonURN {
		t.Fatalf("creds = %+v", got)
	}
	if got.Expired(fixedNow) {
		t.Fatal("should not be expired")
	}
	if !got.Expired(fixedNow.Add(2 * time.Hour)) {
		t.Fatal("should be expired")
	}
}

func TestLoadCredentialsMissingIsNotAuthenticated(t *testing.T) {
	_, err := LoadCredentials(t.TempDir())
	if !domain.IsKind(err, domain.KindNotAuthenticated) {
		t.Fatalf("got %v, want not_authenticated", err)
	}
}

func TestExchangeCode(t *testing.T) {
	userinfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sub": "abc123"})
	}))
	defer userinfo.Close()
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.Form.Get("grant_type") != "authorization_code" || r.Form.Get("code") != "the-code" {
			t.Errorf("form = %v", r.Form)
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	}))
	defer tokens.Close()

	flow := NewOAuth("id", "secret")
	flow.TokenURL = tokens.URL
	client := NewClient()
	client.UserURL = userinfo.URL

	creds, err := flow.ExchangeCode(context.Background(), client, "the-code")
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessToken != "tok" || creds.PersonURN != "urn:li:person:abc123" {
		t.Fatalf("creds = %+v", creds)
	}
	if !creds.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry = %v", creds.ExpiresAt)
	}
}
