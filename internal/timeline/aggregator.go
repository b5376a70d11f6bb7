package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/service"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage"
	"github.com/MyNameIsWhaaat/socialfeed/internal/metrics"
)

type Options struct {
	// Timeout bounds each identity sub-query and the ranked comment query.
	Timeout time.Duration
	// Concurrency caps parallel ancestry resolution per timeline.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	return o
}

type Aggregator struct {
	comments storage.Repository
	ancestry *service.AncestryResolver
	profiles ProfileSource
	graph    FollowerGraph
	opts     Options
	log      zerolog.Logger
	tracer   trace.Tracer
}

func NewAggregator(
	comments storage.Repository,
	ancestry *service.AncestryResolver,
	profiles ProfileSource,
	graph FollowerGraph,
	opts Options,
	log zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		comments: comments,
		ancestry: ancestry,
		profiles: profiles,
		graph:    graph,
		opts:     opts.withDefaults(),
		log:      log,
		tracer:   otel.Tracer("github.com/MyNameIsWhaaat/socialfeed/internal/timeline"),
	}
}

func (a *Aggregator) Build(ctx context.Context, uid string) (Timeline, error) {
	if strings.TrimSpace(uid) == "" {
		return Timeline{}, ErrInvalidInput
	}

	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "timeline.Build", trace.WithAttributes(attribute.String("uid", uid)))
	defer span.End()

	var (
		profile   Profile
		followers []Follower
		comments  []model.EnrichedComment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := call(gctx, a.opts.Timeout, func(ctx context.Context) (Profile, error) {
			return a.profiles.GetProfile(ctx, uid)
		})
		if err != nil {
			return dependency("profile", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		fs, err := call(gctx, a.opts.Timeout, func(ctx context.Context) ([]Follower, error) {
			return a.graph.Followers(ctx, uid)
		})
		if err != nil {
			return dependency("followers", err)
		}
		followers = fs
		return nil
	})
	g.Go(func() error {
		cs, err := a.popularComments(gctx, uid)
		if err != nil {
			return err
		}
		comments = cs
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeline build failed")
		metrics.TimelineDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		a.log.Error().Err(err).Str("uid", uid).Msg("timeline build failed")
		return Timeline{}, err
	}

	if followers == nil {
		followers = []Follower{}
	}
	span.SetAttributes(
		attribute.Int("followers", len(followers)),
		attribute.Int("comments", len(comments)),
	)
	metrics.TimelineDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return Timeline{
		Followers: followers,
		Comments:  comments,
		Profile:   profile.Profile,
		Name:      profile.Name,
	}, nil
}

// popularComments ranks the followees' comments and attaches ancestry. Rows
// are resolved concurrently and written back by rank index.
func (a *Aggregator) popularComments(ctx context.Context, uid string) ([]model.EnrichedComment, error) {
	followees, err := call(ctx, a.opts.Timeout, func(ctx context.Context) ([]Follower, error) {
		return a.graph.Followees(ctx, uid)
	})
	if err != nil {
		return nil, dependency("followees", err)
	}

	authors := authorIDs(followees)
	if len(authors) == 0 {
		return []model.EnrichedComment{}, nil
	}

	top, err := call(ctx, a.opts.Timeout, func(ctx context.Context) ([]model.Comment, error) {
		return a.comments.ListTopByAuthors(ctx, authors, DefaultLimit)
	})
	if err != nil {
		return nil, dependency("comments", err)
	}

	out := make([]model.EnrichedComment, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, c := range top {
		g.Go(func() error {
			anc, err := a.ancestry.Resolve(gctx, c)
			if err != nil {
				return err
			}
			out[i] = model.Enrich(c, anc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func authorIDs(fs []Follower) []string {
	seen := make(map[string]struct{}, len(fs))
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		if f.Name == "" {
			continue
		}
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f.Name)
	}
	return out
}

func call[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func dependency(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, what, err)
}
