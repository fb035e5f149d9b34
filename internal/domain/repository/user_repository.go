package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// ErrPartialWrite means only one side of a follow edge was written.
	ErrPartialWrite = errors.New("partial write")
)

// UserFilter narrows a user scan. Empty fields do not filter.
type UserFilter struct {
	IDs       []string
	ExcludeID string
	// Text is a case-insensitive substring matched against name or username.
	Text string
}

// UserRepository defines the interface for user-related persistence.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// Find returns users matching f. When f.IDs is set the result follows its order.
	Find(ctx context.Context, f UserFilter) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error

	CountFollowers(ctx context.Context, id string) (int, error)
	CountFollowing(ctx context.Context, id string) (int, error)
	// SetFollow adds (follow) or removes actorID -> targetID on both documents.
	// changed is false when the edge was already in the requested state.
	SetFollow(ctx context.Context, actorID, targetID string, follow bool) (changed bool, err error)
	// AddFollow records actorID -> targetID on both documents. Idempotent.
	AddFollow(ctx context.Context, actorID, targetID string) error
	// RemoveFollow deletes actorID -> targetID from both documents. Idempotent.
	RemoveFollow(ctx context.Context, actorID, targetID string) error
}
