package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
)

// UserRepository keeps users in process memory. Both sides of a follow edge
// change under one lock.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	order []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.users {
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
		if u.Username != "" && existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.users[u.ID] = u.Clone()
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(func(u *entity.User) bool { return email != "" && strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(func(u *entity.User) bool { return username != "" && u.Username == username })
}

func (r *UserRepository) findOne(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			return u.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Find(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.order
	if f.IDs != nil {
		ids = f.IDs
	}
	needle := strings.ToLower(f.Text)
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, ok := r.users[id]
		if !ok || id == f.ExcludeID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Username), needle) {
			continue
		}
		out = append(out, u.Clone())
	}
	return out, nil
}

// Update replaces profile fields; the follow sets are owned by AddFollow/RemoveFollow.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
		if u.Username != "" && existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	next := u.Clone()
	next.Followers = cur.Followers
	next.Following = cur.Following
	next.CreatedAt = cur.CreatedAt
	r.users[u.ID] = next
	return nil
}

func (r *UserRepository) CountFollowers(ctx context.Context, id string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return u.Followers.Len(), nil
}

func (r *UserRepository) CountFollowing(ctx context.Context, id string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return u.Following.Len(), nil
}

func (r *UserRepository) SetFollow(ctx context.Context, actorID, targetID string, follow bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, target, err := r.pair(actorID, targetID)
	if err != nil {
		return false, err
	}
	if follow {
		target.Followers.Add(actorID)
		return actor.Following.Add(targetID), nil
	}
	target.Followers.Remove(actorID)
	return actor.Following.Remove(targetID), nil
}

func (r *UserRepository) AddFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, true)
	return err
}

func (r *UserRepository) RemoveFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, false)
	return err
}

func (r *UserRepository) pair(actorID, targetID string) (*entity.User, *entity.User, error) {
	actor, ok := r.users[actorID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	target, ok := r.users[targetID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	return actor, target, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
