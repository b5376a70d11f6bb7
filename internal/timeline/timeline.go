// Package timeline assembles a user's timeline: identity, followers, and the
// most popular comments written by the people the user follows.
package timeline

import (
	"context"
	"errors"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrDependency marks a failed identity sub-query. The whole timeline
	// fails with it; there is no partial result.
	ErrDependency = errors.New("dependency failure")
	// ErrUserNotFound is returned by a ProfileSource for an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// DefaultLimit is the number of followee comments on a timeline.
const DefaultLimit = 30

type Profile struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// Follower describes one end of a follow edge. For followees Name carries the
// user id that authored comments.
type Follower struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

type Timeline struct {
	Followers []Follower              `json:"followers"`
	Comments  []model.EnrichedComment `json:"comments"`
	Profile   string                  `json:"profile"`
	Name      string                  `json:"name"`
}

type ProfileSource interface {
	GetProfile(ctx context.Context, uid string) (Profile, error)
}

type FollowerGraph interface {
	Followers(ctx context.Context, uid string) ([]Follower, error)
	Followees(ctx context.Context, uid string) ([]Follower, error)
}

type Service interface {
	Build(ctx context.Context, uid string) (Timeline, error)
}
