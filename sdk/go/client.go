// Package postlinesdk is a minimal client for the Postline HTTP API.
package postlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Postline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Post represents the API post model.
type Post struct {
	ID            string   `json:"id"`
	Topic         string   `json:"topic"`
	Tone          string   `json:"tone"`
	Hook          string   `json:"hook"`
	Body          string   `json:"body"`
	CallToAction  string   `json:"call_to_action"`
	Hashtags      []string `json:"hashtags,omitempty"`
	Status        string   `json:"status"`
	ScheduledTime string   `json:"scheduled_time,omitempty"`
	PublishedTime string   `json:"published_time,omitempty"`
	RemoteID      string   `json:"remote_id,omitempty"`
}

// Score is an engagement estimate.
type Score struct {
	Overall     float64            `json:"overall"`
	Breakdown   map[string]float64 `json:"breakdown"`
	Suggestions []string           `json:"suggestions"`
}

// Hashtag is one categorized suggestion.
type Hashtag struct {
	Tag      string `json:"tag"`
	Category string `json:"category"`
}

// Window is a recommended posting slot.
type Window struct {
	Day        string  `json:"day"`
	Hour       int     `json:"hour"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// CalendarEntry is one planned posting day.
type CalendarEntry struct {
	DayOffset   int    `json:"day_offset"`
	Date        string `json:"date"`
	Topic       string `json:"topic"`
	ContentType string `json:"content_type"`
	Window      Window `json:"window"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Draft creates a draft post.
func (c *Client) Draft(ctx context.Context, topic, tone, text string) (Post, error) {
	body := map[string]any{"topic": topic}
	if tone != "" {
		body["tone"] = tone
	}
	if text != "" {
		body["text"] = text
	}
	var resp Post
	err := c.do(ctx, http.MethodPost, "posts", body, &resp)
	return resp, err
}

// Posts lists posts, optionally filtered by status.
func (c *Client) Posts(ctx context.Context, status string) ([]Post, error) {
	endpoint := "posts"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Posts []Post `json:"posts"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Posts, err
}

// Post fetches one post.
func (c *Client) Post(ctx context.Context, id string) (Post, error) {
	var resp Post
	err := c.do(ctx, http.MethodGet, "posts/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Score returns the engagement score for a post.
func (c *Client) Score(ctx context.Context, id string) (Score, error) {
	var resp Score
	err := c.do(ctx, http.MethodGet, "posts/"+url.PathEscape(id)+"/score", nil, &resp)
	return resp, err
}

// SuggestHashtags recommends hashtags; postID may be empty.
func (c *Client) SuggestHashtags(ctx context.Context, topic, industry, postID string) ([]Hashtag, error) {
	body := map[string]any{"topic": topic}
	if industry != "" {
		body["industry"] = industry
	}
	if postID != "" {
		body["post_id"] = postID
	}
	var resp struct {
		Hashtags []Hashtag `json:"hashtags"`
	}
	err := c.do(ctx, http.MethodPost, "hashtags/suggest", body, &resp)
	return resp.Hashtags, err
}

// OptimalTimes returns recommended posting windows.
func (c *Client) OptimalTimes(ctx context.Context, timezone, industry string) ([]Window, error) {
	q := url.Values{}
	if timezone != "" {
		q.Set("timezone", timezone)
	}
	if industry != "" {
		q.Set("industry", industry)
	}
	endpoint := "times"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp struct {
		Windows []Window `json:"windows"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Windows, err
}

// Schedule marks a draft for future publication.
func (c *Client) Schedule(ctx context.Context, id string, at time.Time) (Post, error) {
	body := map[string]any{"at": at.Format(time.RFC3339)}
	var resp Post
	err := c.do(ctx, http.MethodPost, "posts/"+url.PathEscape(id)+"/schedule", body, &resp)
	return resp, err
}

// Publish pushes a post to the platform now.
func (c *Client) Publish(ctx context.Context, id string) (Post, error) {
	var resp Post
	err := c.do(ctx, http.MethodPost, "posts/"+url.PathEscape(id)+"/publish", nil, &resp)
	return resp, err
}

// PlanCalendar lays out a posting calendar.
func (c *Client) PlanCalendar(ctx context.Context, topics []string, days int, start, industry, timezone string) ([]CalendarEntry, error) {
	body := map[string]any{"topics": topics, "days": days}
	if start != "" {
		body["start"] = start
	}
	if industry != "" {
		body["industry"] = industry
	}
	if timezone != "" {
		body["timezone"] = timezone
	}
	var resp struct {
		Entries []CalendarEntry `json:"entries"`
	}
	err := c.do(ctx, http.MethodPost, "calendar", body, &resp)
	return resp.Entries, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
