package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/service"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage/inmemory"
	mongostore "github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage/mongo"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage/sqlstore"
	"github.com/MyNameIsWhaaat/socialfeed/internal/config"
	"github.com/MyNameIsWhaaat/socialfeed/internal/ratelimit"
	"github.com/MyNameIsWhaaat/socialfeed/internal/shared/redisx"
	"github.com/MyNameIsWhaaat/socialfeed/internal/social/httpsource"
	"github.com/MyNameIsWhaaat/socialfeed/internal/social/profilestore"
	"github.com/MyNameIsWhaaat/socialfeed/internal/social/redisgraph"
	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

const connectAttempts = 5

type app struct {
	log      zerolog.Logger
	comments service.CommentService
	timeline *timeline.Aggregator
	limiter  *ratelimit.Limiter
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}

func build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	repo, err := a.openComments(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		if rdb, err = redisx.Open(ctx, cfg.RedisHost, cfg.RedisPort); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
	}

	social := httpsource.New(cfg.SocialServiceURL, cfg.SubqueryTimeout)

	var profiles timeline.ProfileSource = social
	if cfg.ProfileSource == config.SourcePostgres {
		db, err := profilestore.Open(cfg.ProfileDatabaseURL, cfg.ProfileReplicas, connectAttempts)
		if err != nil {
			return nil, fmt.Errorf("profile db: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		profiles = profilestore.New(db)
	}

	var graph timeline.FollowerGraph = social
	if cfg.GraphSource == config.SourceRedis {
		graph = redisgraph.New(rdb)
	}

	if cfg.TimelineRateLimit > 0 {
		a.limiter = ratelimit.New(rdb, cfg.TimelineRateLimit, time.Minute, log)
	}

	ancestry := service.NewAncestryResolver(repo, cfg.SubqueryTimeout, log)
	a.comments = service.New(repo)
	a.timeline = timeline.NewAggregator(repo, ancestry, profiles, graph, timeline.Options{
		Timeout:     cfg.SubqueryTimeout,
		Concurrency: cfg.AncestryConcurrency,
	}, log)

	log.Info().
		Str("store", cfg.CommentStore).
		Str("profiles", cfg.ProfileSource).
		Str("graph", cfg.GraphSource).
		Int64("timeline_rate_limit", cfg.TimelineRateLimit).
		Msg("components ready")

	ok = true
	return a, nil
}

func (a *app) openComments(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.CommentStore {
	case config.StorePostgres:
		return a.openSQL(ctx, sqlstore.Postgres, cfg.DatabaseURL)
	case config.StoreSQLite:
		return a.openSQL(ctx, sqlstore.SQLite, cfg.SQLitePath)
	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI, connectAttempts)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(c)
		})
		return mongostore.New(client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)), nil
	default:
		if cfg.CommentsFile == "" {
			return inmemory.New(), nil
		}
		f, err := os.Open(cfg.CommentsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		repo, err := inmemory.LoadJSONLines(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.CommentsFile, err)
		}
		a.log.Info().Int("comments", repo.Len()).Str("file", cfg.CommentsFile).Msg("seeded memory store")
		return repo, nil
	}
}

func (a *app) openSQL(ctx context.Context, d sqlstore.Dialect, dsn string) (storage.Repository, error) {
	db, err := sqlstore.Open(ctx, d, dsn, connectAttempts)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	repo := sqlstore.New(db, d)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("%s schema: %w", d.Name, err)
	}
	return repo, nil
}
