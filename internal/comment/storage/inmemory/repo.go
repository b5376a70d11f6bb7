package inmemory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

type Repo struct {
	mu sync.RWMutex

	byID     map[string]model.Comment
	byAuthor map[string][]string
}

func New(cs ...model.Comment) *Repo {
	r := &Repo{
		byID:     make(map[string]model.Comment, len(cs)),
		byAuthor: make(map[string][]string),
	}
	for _, c := range cs {
		r.putLocked(c)
	}
	return r
}

// LoadJSONLines reads one JSON comment per line. Blank lines are skipped.
func LoadJSONLines(rd io.Reader) (*Repo, error) {
	r := New()
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var c model.Comment
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if c.CID == "" {
			return nil, fmt.Errorf("line %d: missing cid", line)
		}
		r.putLocked(c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// putLocked is only called while the repo is not yet shared.
func (r *Repo) putLocked(c model.Comment) {
	if old, ok := r.byID[c.CID]; ok {
		r.byAuthor[old.UID] = removeID(r.byAuthor[old.UID], c.CID)
	}
	r.byID[c.CID] = c
	r.byAuthor[c.UID] = append(r.byAuthor[c.UID], c.CID)
}

func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Repo) ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.collectLocked([]string{uid})
	model.SortByRank(out)
	return out, nil
}

func (r *Repo) ListTopByAuthors(ctx context.Context, uids []string, limit int) ([]model.Comment, error) {
	_ = ctx

	if len(uids) == 0 || limit <= 0 {
		return []model.Comment{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.collectLocked(uids)
	model.SortByRank(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) FindByID(ctx context.Context, cid string) (model.Comment, bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[cid]
	return c, ok, nil
}

func (r *Repo) collectLocked(uids []string) []model.Comment {
	seen := make(map[string]struct{}, len(uids))
	out := make([]model.Comment, 0)
	for _, uid := range uids {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		for _, id := range r.byAuthor[uid] {
			out = append(out, r.byID[id])
		}
	}
	return out
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != target {
			out = append(out, v)
		}
	}
	return append([]string(nil), out...)
}
