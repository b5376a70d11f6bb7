package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage"
	"github.com/MyNameIsWhaaat/socialfeed/internal/metrics"
)

// AncestryResolver attaches the parent and grandparent of a comment.
// The walk is two lookups deep and never goes further.
type AncestryResolver struct {
	repo    storage.Repository
	timeout time.Duration
	log     zerolog.Logger
}

// NewAncestryResolver builds a resolver. timeout bounds each lookup; zero
// leaves lookups bounded only by the caller's context.
func NewAncestryResolver(repo storage.Repository, timeout time.Duration, log zerolog.Logger) *AncestryResolver {
	return &AncestryResolver{repo: repo, timeout: timeout, log: log}
}

// Resolve never fails on missing or unreachable ancestors; those levels are
// left nil. It only returns an error when ctx itself is done.
func (r *AncestryResolver) Resolve(ctx context.Context, c model.Comment) (model.Ancestry, error) {
	if !c.HasParent() {
		return model.Ancestry{}, nil
	}

	parent, ok, err := r.lookup(ctx, *c.ParentID, "parent")
	if err != nil {
		return model.Ancestry{}, err
	}
	if !ok {
		return model.Ancestry{}, nil
	}
	a := model.Ancestry{Parent: &parent}

	if !parent.HasParent() {
		return a, nil
	}
	grand, ok, err := r.lookup(ctx, *parent.ParentID, "grandparent")
	if err != nil {
		return model.Ancestry{}, err
	}
	if ok {
		a.GrandParent = &grand
	}
	return a, nil
}

func (r *AncestryResolver) lookup(ctx context.Context, cid, level string) (model.Comment, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Comment{}, false, err
	}

	lctx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c, ok, err := r.repo.FindByID(lctx, cid)
	if err != nil {
		if ctx.Err() != nil {
			return model.Comment{}, false, ctx.Err()
		}
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.AncestryMisses.WithLabelValues(level, reason).Inc()
		r.log.Warn().Err(err).Str("cid", cid).Str("level", level).Msg("ancestor lookup failed, omitting")
		return model.Comment{}, false, nil
	}
	if !ok {
		metrics.AncestryMisses.WithLabelValues(level, "dangling").Inc()
		return model.Comment{}, false, nil
	}
	return c, true, nil
}
