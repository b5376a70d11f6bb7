// Package httpsource reads profiles and the follow graph from the user
// service over HTTP.
package httpsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

const DefaultTimeout = 3 * time.Second

var ErrMalformed = errors.New("malformed response")

type Client struct {
	base string
	hc   *http.Client
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) GetProfile(ctx context.Context, uid string) (timeline.Profile, error) {
	var p timeline.Profile
	if err := c.getJSON(ctx, c.userURL(uid, "profile"), &p); err != nil {
		return timeline.Profile{}, err
	}
	if p.Name == "" {
		return timeline.Profile{}, fmt.Errorf("%w: profile without name", ErrMalformed)
	}
	return p, nil
}

func (c *Client) Followers(ctx context.Context, uid string) ([]timeline.Follower, error) {
	return c.list(ctx, c.userURL(uid, "followers"))
}

func (c *Client) Followees(ctx context.Context, uid string) ([]timeline.Follower, error) {
	return c.list(ctx, c.userURL(uid, "followees"))
}

func (c *Client) list(ctx context.Context, u string) ([]timeline.Follower, error) {
	out := []timeline.Follower{}
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) userURL(uid, what string) string {
	return fmt.Sprintf("%s/users/%s/%s", c.base, url.PathEscape(uid), what)
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return timeline.ErrUserNotFound
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("user service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
