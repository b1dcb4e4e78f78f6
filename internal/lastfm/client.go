package lastfm

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/spindle/internal/scrobble"
)

// DefaultBaseURL is the Last.fm web service root.
const DefaultBaseURL = "http://ws.audioscrobbler.com/2.0/"

// Client talks to the Last.fm API. Write methods sign requests with the
// shared secret; SessionKey must be set for scrobbling.
type Client struct {
	APIKey       string
	SharedSecret string
	SessionKey   string

	// BaseURL and HTTPClient default to DefaultBaseURL and a 10s client.
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// sign computes the api_sig for params: the md5 hex digest of every
// key+value pair concatenated in key order, followed by the shared
// secret. format/callback are excluded by the protocol; callers must
// not put them in params before signing.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(c.SharedSecret)

	return fmt.Sprintf("%x", md5.Sum([]byte(b.String())))
}

// GetToken requests an unauthorized request token.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	params := map[string]string{
		"method":  "auth.getToken",
		"api_key": c.APIKey,
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.get(ctx, params, true, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("lastfm: empty token response")
	}
	return resp.Token, nil
}

// AuthURL is the page the user must visit to authorize a token.
func AuthURL(apiKey, token string) string {
	return fmt.Sprintf("http://www.last.fm/api/auth/?api_key=%s&token=%s",
		url.QueryEscape(apiKey), url.QueryEscape(token))
}

// GetSession exchanges an authorized token for a permanent session key.
// Returns the session key and the account name.
func (c *Client) GetSession(ctx context.Context, token string) (key, user string, err error) {
	params := map[string]string{
		"method":  "auth.getSession",
		"api_key": c.APIKey,
		"token":   token,
	}
	var resp struct {
		Session struct {
			Name string `json:"name"`
			Key  string `json:"key"`
		} `json:"session"`
	}
	if err := c.get(ctx, params, true, &resp); err != nil {
		return "", "", err
	}
	if resp.Session.Key == "" {
		return "", "", fmt.Errorf("lastfm: no session granted")
	}
	return resp.Session.Key, resp.Session.Name, nil
}

// Submit implements scrobble.Submitter with one track.scrobble call per
// batch. Any transport or non-200 response rejects the whole batch.
func (c *Client) Submit(ctx context.Context, batch []scrobble.Track) error {
	params := map[string]string{
		"method":  "track.scrobble",
		"api_key": c.APIKey,
		"sk":      c.SessionKey,
	}
	for i, t := range batch {
		idx := strconv.Itoa(i)
		params["artist["+idx+"]"] = t.Artist
		params["track["+idx+"]"] = t.Title
		params["album["+idx+"]"] = t.Album
		params["timestamp["+idx+"]"] = strconv.FormatInt(t.StartTimestamp, 10)
	}
	params["api_sig"] = c.sign(params)
	params["format"] = "json"

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("lastfm: building scrobble request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("lastfm: scrobble request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("lastfm: scrobble rejected: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// Artist is one similar-artist suggestion.
type Artist struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SimilarArtists returns up to limit artists similar to name.
func (c *Client) SimilarArtists(ctx context.Context, name string, limit int) ([]Artist, error) {
	params := map[string]string{
		"method":      "artist.getsimilar",
		"artist":      name,
		"api_key":     c.APIKey,
		"limit":       strconv.Itoa(limit),
		"autocorrect": "1",
	}
	var resp struct {
		SimilarArtists struct {
			Artist []Artist `json:"artist"`
		} `json:"similarartists"`
	}
	if err := c.get(ctx, params, false, &resp); err != nil {
		return nil, err
	}
	return resp.SimilarArtists.Artist, nil
}

// get performs a GET call, optionally signing, and decodes the JSON body.
func (c *Client) get(ctx context.Context, params map[string]string, signed bool, out any) error {
	if signed {
		params["api_sig"] = c.sign(params)
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("lastfm: building request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("lastfm: %s: %w", params["method"], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("lastfm: %s: %s: %s", params["method"], resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lastfm: decoding %s response: %w", params["method"], err)
	}
	return nil
}
