package service

import (
	"context"
	"errors"
	"strings"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/storage"
)

var ErrInvalidInput = errors.New("invalid input")

type commentService struct {
	repo storage.Repository
}

func New(repo storage.Repository) CommentService {
	return &commentService{repo: repo}
}

func (s *commentService) ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error) {
	if err := validateID(uid); err != nil {
		return nil, err
	}
	return s.repo.ListByAuthor(ctx, uid)
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return nil
}
