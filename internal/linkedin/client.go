// Package linkedin talks to the LinkedIn REST API: publishing posts,
// fetching the profile URN, and the OAuth2 token flow.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postline/internal/domain"
)

const (
	postsURL    = "https://api.linkedin.com/rest/posts"
	userinfoURL = "https://api.linkedin.com/v2/userinfo"

	apiVersion    = "202502"
	maxCommentary = 3000

	defaultTimeout = 30 * time.Second
)

// Client publishes to LinkedIn over HTTP.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	UserURL string
}

// NewClient builds a Client with the production endpoints.
func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: defaultTimeout},
		BaseURL: postsURL,
		UserURL: userinfoURL,
	}
}

// PublishResult is what LinkedIn returns for a created post.
type PublishResult struct {
	RemoteID    string
	PublishedAt time.Time
}

// Publish creates the post on LinkedIn and returns its URN. The commentary
// is the body followed by the hashtags and must fit the platform cap.
func (c *Client) Publish(ctx context.Context, post domain.Post, creds Credentials) (PublishResult, error) {
	commentary := BuildCommentary(post)
	if len(commentary) > maxCommentary {
		return PublishResult{}, domain.Errorf(domain.KindInvalidInput,
			"post is %d characters but the platform allows at most %d; shorten it before publishing",
			len(commentary), maxCommentary)
	}

	payload := map[string]any{
		"author":     creds.PersonURN,
		"commentary": commentary,
		"visibility": "PUBLIC",
		"distribution": map[string]any{
			"feedDistribution":               "MAIN_FEED",
			"targetEntities":                 []any{},
			"thirdPartyDistributionChannels": []any{},
		},
		"lifecycleState":            "PUBLISHED",
		"isReshareDisabledByAuthor": false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return PublishResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("Linkedin-Version", apiVersion)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return PublishResult{}, domain.WrapError(domain.KindTransportFailure, err, "publish request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PublishResult{}, domain.Errorf(domain.KindTransportFailure,
			"publish rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	return PublishResult{
		RemoteID:    resp.Header.Get("x-restli-id"),
		PublishedAt: time.Now().UTC(),
	}, nil
}

// GetProfileURN fetches the authenticated member's person URN.
func (c *Client) GetProfileURN(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.KindTransportFailure, err, "userinfo request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", domain.Errorf(domain.KindTransportFailure,
			"userinfo rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	var data struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", domain.WrapError(domain.KindTransportFailure, err, "decode userinfo response")
	}
	return fmt.Sprintf("urn:li:person:%s", data.Sub), nil
}

// BuildCommentary joins the post body and hashtags into the wire text.
func BuildCommentary(post domain.Post) string {
	commentary := post.Content.Body
	if len(post.Hashtags) > 0 {
		tags := make([]string, 0, len(post.Hashtags))
		for _, t := range post.Hashtags {
			if !strings.HasPrefix(t, "#") {
				t = "#" + t
			}
			tags = append(tags, t)
		}
		commentary = commentary + "\n\n" + strings.Join(tags, " ")
	}
	return commentary
}
