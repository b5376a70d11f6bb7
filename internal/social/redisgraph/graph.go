// Package redisgraph reads the follow graph from Redis. Each user has two
// lists, followers:{uid} and followees:{uid}, whose entries are JSON
// descriptors {"name":..,"profile":..} in follow order.
package redisgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

func FollowersKey(uid string) string { return "followers:" + uid }
func FolloweesKey(uid string) string { return "followees:" + uid }

type Graph struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) *Graph {
	return &Graph{rdb: rdb}
}

func (g *Graph) Followers(ctx context.Context, uid string) ([]timeline.Follower, error) {
	return g.list(ctx, FollowersKey(uid))
}

func (g *Graph) Followees(ctx context.Context, uid string) ([]timeline.Follower, error) {
	return g.list(ctx, FolloweesKey(uid))
}

func (g *Graph) list(ctx context.Context, key string) ([]timeline.Follower, error) {
	raw, err := g.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return decode(key, raw)
}

func decode(key string, raw []string) ([]timeline.Follower, error) {
	out := make([]timeline.Follower, 0, len(raw))
	for i, s := range raw {
		var f timeline.Follower
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("%s[%d]: descriptor without name", key, i)
		}
		out = append(out, f)
	}
	return out, nil
}
