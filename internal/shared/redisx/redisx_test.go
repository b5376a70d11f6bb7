package redisx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := Open(context.Background(), mr.Host(), mr.Port())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rdb.Close()
}

func TestOpenUnreachable(t *testing.T) {
	if _, err := Open(context.Background(), "127.0.0.1", "1"); err == nil {
		t.Fatalf("expected ping error")
	}
}
