// Package mongo serves comments from a MongoDB collection of flat comment
// documents, the layout used by the reddit_db.posts dataset.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

type Repo struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Repo {
	return &Repo{coll: coll}
}

// Connect dials uri and pings the primary, retrying with backoff.
func Connect(ctx context.Context, uri string, attempts int) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if attempts <= 0 {
		attempts = 1
	}
	sleep := 500 * time.Millisecond
	var last error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		last = client.Ping(pctx, readpref.Primary())
		cancel()
		if last == nil {
			return client, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Disconnect(context.Background())
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	_ = client.Disconnect(context.Background())
	return nil, fmt.Errorf("mongo ping after %d attempts: %w", attempts, last)
}

func (r *Repo) ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error) {
	return r.find(ctx, bson.M{"uid": uid}, rankedFind(0))
}

func (r *Repo) ListTopByAuthors(ctx context.Context, uids []string, limit int) ([]model.Comment, error) {
	if len(uids) == 0 || limit <= 0 {
		return []model.Comment{}, nil
	}
	return r.find(ctx, authorsFilter(uids), rankedFind(limit))
}

func (r *Repo) FindByID(ctx context.Context, cid string) (model.Comment, bool, error) {
	var c model.Comment
	err := r.coll.FindOne(ctx, bson.M{"cid": cid}, options.FindOne().SetProjection(noID())).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Comment{}, false, nil
	}
	if err != nil {
		return model.Comment{}, false, err
	}
	return c, true, nil
}

func (r *Repo) find(ctx context.Context, filter any, opts *options.FindOptions) ([]model.Comment, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]model.Comment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func authorsFilter(uids []string) bson.M {
	return bson.M{"uid": bson.M{"$in": uids}}
}

// rankedFind sorts by the ranking key; limit 0 means no limit.
func rankedFind(limit int) *options.FindOptions {
	opts := options.Find().
		SetProjection(noID()).
		SetSort(bson.D{{Key: "ups", Value: -1}, {Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func noID() bson.M {
	return bson.M{"_id": 0}
}
