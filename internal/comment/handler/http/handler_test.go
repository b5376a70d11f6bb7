package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	handler "github.com/MyNameIsWhaaat/socialfeed/internal/comment/handler/http"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/service"
	inm "github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage/inmemory"
	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

// brokenRepo fails every author listing.
type brokenRepo struct{ *inm.Repo }

func (brokenRepo) ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error) {
	return nil, errors.New("store down")
}

type timelineFunc func(ctx context.Context, uid string) (timeline.Timeline, error)

func (f timelineFunc) Build(ctx context.Context, uid string) (timeline.Timeline, error) {
	return f(ctx, uid)
}

func strPtr(s string) *string { return &s }

func seed() *inm.Repo {
	return inm.New(
		model.Comment{CID: "c1", UID: "u1", Ups: 3, Timestamp: "1490000001", Content: "first"},
		model.Comment{CID: "c2", UID: "u1", Ups: 9, Timestamp: "1490000002", Content: "second", ParentID: strPtr("c9")},
		model.Comment{CID: "c3", UID: "u2", Ups: 1, Timestamp: "1490000003", Content: "other"},
	)
}

func okTimeline(ctx context.Context, uid string) (timeline.Timeline, error) {
	if strings.TrimSpace(uid) == "" {
		return timeline.Timeline{}, timeline.ErrInvalidInput
	}
	parent := model.Comment{CID: "p1", UID: "u9", Timestamp: "1"}
	return timeline.Timeline{
		Name:      "alice",
		Profile:   "alice.png",
		Followers: []timeline.Follower{{Name: "bob", Profile: "bob.png"}},
		Comments: []model.EnrichedComment{
			model.Enrich(model.Comment{CID: "c7", UID: "u2", Ups: 5, ParentID: strPtr("p1")}, model.Ancestry{Parent: &parent}),
		},
	}, nil
}

func newServer(t *testing.T, svc service.CommentService, tl timeline.Service) *httptest.Server {
	t.Helper()
	h := handler.New(svc, tl, zerolog.Nop())
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, body
}

func TestHomepage(t *testing.T) {
	srv := newServer(t, service.New(seed()), timelineFunc(okTimeline))

	code, body := get(t, srv.URL+"/homepage?id=u1")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var out struct {
		Comments []map[string]any `json:"comments"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(out.Comments))
	}
	byID := map[string]map[string]any{}
	for _, c := range out.Comments {
		byID[c["cid"].(string)] = c
	}
	if v, ok := byID["c1"]["parent_id"]; !ok || v != nil {
		t.Fatalf("top-level comment should carry parent_id null, got %v (present=%v)", v, ok)
	}
	if byID["c2"]["parent_id"] != "c9" {
		t.Fatalf("unexpected parent_id %v", byID["c2"]["parent_id"])
	}
	for _, k := range []string{"uid", "downs", "ups", "subreddit", "timestamp", "content", "cid"} {
		if _, ok := byID["c1"][k]; !ok {
			t.Fatalf("missing field %q in %v", k, byID["c1"])
		}
	}
}

func TestHomepageUnknownUserIsEmptyArray(t *testing.T) {
	srv := newServer(t, service.New(seed()), timelineFunc(okTimeline))

	code, body := get(t, srv.URL+"/homepage?id=nobody")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if strings.TrimSpace(string(body)) != `{"comments":[]}` {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestHomepageErrors(t *testing.T) {
	srv := newServer(t, service.New(seed()), timelineFunc(okTimeline))
	for _, q := range []string{"/homepage", "/homepage?id=", "/homepage?id=%20"} {
		if code, _ := get(t, srv.URL+q); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, code)
		}
	}

	broken := newServer(t, service.New(brokenRepo{inm.New()}), timelineFunc(okTimeline))
	code, body := get(t, broken.URL+"/homepage?id=u1")
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if strings.Contains(string(body), "store down") {
		t.Fatalf("internal cause leaked: %s", body)
	}
}

func TestTimeline(t *testing.T) {
	srv := newServer(t, service.New(seed()), timelineFunc(okTimeline))

	code, body := get(t, srv.URL+"/timeline?id=u1")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["name"] != "alice" || out["profile"] != "alice.png" {
		t.Fatalf("unexpected identity %v", out)
	}
	comments := out["comments"].([]any)
	row := comments[0].(map[string]any)
	if _, ok := row["parent"]; !ok {
		t.Fatalf("expected parent on row %v", row)
	}
	if _, ok := row["grand_parent"]; ok {
		t.Fatalf("absent grand_parent must be omitted: %v", row)
	}
	if len(out["followers"].([]any)) != 1 {
		t.Fatalf("unexpected followers %v", out["followers"])
	}
}

func TestTimelineStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", timeline.ErrInvalidInput, http.StatusBadRequest},
		{"dependency", fmt.Errorf("%w: profile: user service status 503: upstream db-7.internal down", timeline.ErrDependency), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tl := timelineFunc(func(ctx context.Context, uid string) (timeline.Timeline, error) {
				return timeline.Timeline{}, tc.err
			})
			srv := newServer(t, service.New(seed()), tl)
			code, body := get(t, srv.URL+"/timeline?id=u1")
			if code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, code, body)
			}
			var out map[string]any
			if err := json.Unmarshal(body, &out); err != nil || out["error"] == nil {
				t.Fatalf("expected error body, got %s", body)
			}
			if strings.Contains(string(body), "db-7") {
				t.Fatalf("cause leaked to client: %s", body)
			}
			if tc.want == http.StatusBadGateway && out["error"] != "dependency failure" {
				t.Fatalf("unexpected 502 body %s", body)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t, service.New(seed()), timelineFunc(okTimeline))

	code, body := get(t, srv.URL+"/healthz")
	if code != http.StatusOK || strings.TrimSpace(string(body)) != `{"result":"ok"}` {
		t.Fatalf("unexpected health %d %s", code, body)
	}

	get(t, srv.URL+"/homepage?id=u1")
	code, body = get(t, srv.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", code)
	}
	if !strings.Contains(string(body), "socialfeed_http_request_duration_seconds") {
		t.Fatalf("request histogram missing from exposition")
	}
}
