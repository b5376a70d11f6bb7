package mongo

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestRankedFind(t *testing.T) {
	opts := rankedFind(30)

	wantSort := bson.D{{Key: "ups", Value: -1}, {Key: "timestamp", Value: -1}}
	if !reflect.DeepEqual(opts.Sort, wantSort) {
		t.Fatalf("unexpected sort %v", opts.Sort)
	}
	if opts.Limit == nil || *opts.Limit != 30 {
		t.Fatalf("expected limit 30, got %v", opts.Limit)
	}
	if !reflect.DeepEqual(opts.Projection, bson.M{"_id": 0}) {
		t.Fatalf("expected _id excluded, got %v", opts.Projection)
	}

	if unlimited := rankedFind(0); unlimited.Limit != nil {
		t.Fatalf("expected no limit, got %d", *unlimited.Limit)
	}
}

func TestAuthorsFilter(t *testing.T) {
	got := authorsFilter([]string{"a", "b"})
	want := bson.M{"uid": bson.M{"$in": []string{"a", "b"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestListTopByAuthorsEmptySetSkipsStore(t *testing.T) {
	// nil collection: any store access would panic
	repo := New(nil)
	got, err := repo.ListTopByAuthors(context.Background(), nil, 30)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", got, err)
	}
}

func TestConnectStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Connect(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100", 5)
	if err == nil {
		t.Fatalf("expected error from unreachable server")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("retries outlived the context: %s", elapsed)
	}
}
