package service

import (
	"context"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

type CommentService interface {
	ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error)
}
