package storage

import (
	"context"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

// Repository is read-only, ranked access to the comment collection.
// Listings are always ordered by model.RankedBefore.
type Repository interface {
	ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error)
	ListTopByAuthors(ctx context.Context, uids []string, limit int) ([]model.Comment, error)
	// FindByID returns ok=false, with a nil error, when no comment has that cid.
	FindByID(ctx context.Context, cid string) (c model.Comment, ok bool, err error)
}
