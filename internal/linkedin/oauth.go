package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postline/internal/domain"
)

const (
	authURL  = "https://www.linkedin.com/oauth/v2/authorization"
	tokenURL = "https://www.linkedin.com/oauth/v2/accessToken"

	oauthScopes = "openid profile w_member_social"
	oauthState  = "postline_auth"

	callbackPort    = 8099
	callbackTimeout = 120 * time.Second
)

// OAuth runs the three-legged authorization flow against LinkedIn.
type OAuth struct {
	ClientID     string
	ClientSecret string
	Port         int
	TokenURL     string
	HTTP         *http.Client
}

// NewOAuth builds an OAuth flow with production endpoints.
func NewOAuth(clientID, clientSecret string) *OAuth {
	return &OAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Port:         callbackPort,
		TokenURL:     tokenURL,
		HTTP:         &http.Client{Timeout: defaultTimeout},
	}
}

// RedirectURI is the local callback URL registered with the LinkedIn app.
func (o *OAuth) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", o.Port)
}

// AuthorizeURL builds the URL the user must visit to grant access.
func (o *OAuth) AuthorizeURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", o.ClientID)
	q.Set("redirect_uri", o.RedirectURI())
	q.Set("scope", oauthScopes)
	q.Set("state", oauthState)
	return authURL + "?" + q.Encode()
}

// WaitForCode serves one HTTP request on the callback port and returns the
// authorization code from it, or an error if the user denied access or the
// context expires first.
func (o *OAuth) WaitForCode(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", o.Port))
	if err != nil {
		return "", fmt.Errorf("start callback listener: %w", err)
	}
	defer ln.Close()

	type result struct {
		code string
		err  error
	}
	ch := make(chan result, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("code") != "":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>")
			ch <- result{code: q.Get("code")}
		case q.Get("error") != "":
			desc := q.Get("error_description")
			if desc == "" {
				desc = q.Get("error")
			}
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "<html><body><h1>Authorization failed.</h1><p>Please try again.</p></body></html>")
			ch <- result{err: domain.Errorf(domain.KindNotAuthenticated, "authorization denied: %s", desc)}
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()
	select {
	case res := <-ch:
		return res.code, res.err
	case <-ctx.Done():
		return "", domain.Errorf(domain.KindNotAuthenticated, "timed out waiting for authorization callback")
	}
}

// ExchangeCode trades an authorization code for credentials. The profile URN
// is fetched with the fresh token so publishing can attribute the author.
func (o *OAuth) ExchangeCode(ctx context.Context, client *Client, code string) (Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", o.ClientID)
	form.Set("client_secret", o.ClientSecret)
	form.Set("redirect_uri", o.RedirectURI())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return Credentials{}, domain.WrapError(domain.KindTransportFailure, err, "token exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Credentials{}, domain.Errorf(domain.KindTransportFailure,
			"token exchange rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return Credentials{}, domain.WrapError(domain.KindTransportFailure, err, "decode token response")
	}
	if tok.AccessToken == "" {
		return Credentials{}, domain.Errorf(domain.KindTransportFailure, "token response missing access_token")
	}

	urn, err := client.GetProfileURN(ctx, tok.AccessToken)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		AccessToken: tok.AccessToken,
		ExpiresAt:   time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second),
		PersonURN:   urn,
	}, nil
}
