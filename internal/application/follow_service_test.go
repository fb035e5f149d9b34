package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

type recordingPublisher struct {
	events []entity.FollowEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	if ev, ok := body.(entity.FollowEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func seedUsers(t *testing.T, repo *memory.UserRepository, users ...*entity.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, repo.Create(context.Background(), u))
	}
}

func newFollowFixture(t *testing.T) (*memory.UserRepository, *recordingPublisher, *FollowService) {
	t.Helper()
	repo := memory.NewUserRepository()
	seedUsers(t, repo,
		&entity.User{ID: "t", Email: "t@example.test", Name: "Target", Username: "target"},
		&entity.User{ID: "a", Email: "a@example.test", Name: "Alice", Username: "alice"},
		&entity.User{ID: "b", Email: "b@example.test", Name: "Bob", Username: "bob"},
		&entity.User{ID: "c", Email: "c@example.test", Name: "Carol", Username: "carol"},
		&entity.User{ID: "v", Email: "v@example.test", Name: "Viewer", Username: "viewer"},
	)
	pub := &recordingPublisher{}
	return repo, pub, NewFollowService(repo, pub, helpers.NewDiscardLogger())
}

func TestToggleFollowRoundTrip(t *testing.T) {
	repo, pub, svc := newFollowFixture(t)
	ctx := context.Background()

	state, err := svc.ToggleFollow(ctx, "a", "t")
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)

	a, _ := repo.GetByID(ctx, "a")
	target, _ := repo.GetByID(ctx, "t")
	assert.True(t, a.Follows("t"))
	assert.True(t, target.IsFollowedBy("a"))

	state, err = svc.ToggleFollow(ctx, "a", "t")
	require.NoError(t, err)
	assert.Equal(t, StateUnfollowed, state)

	a, _ = repo.GetByID(ctx, "a")
	target, _ = repo.GetByID(ctx, "t")
	assert.Equal(t, 0, a.Following.Len())
	assert.Equal(t, 0, target.Followers.Len())

	require.Len(t, pub.events, 2)
	assert.Equal(t, entity.EventUserFollowed, pub.events[0].Type)
	assert.Equal(t, entity.EventUserUnfollowed, pub.events[1].Type)
	assert.Equal(t, "a", pub.events[0].ActorID)
	assert.Equal(t, "t", pub.events[0].TargetID)
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	repo, pub, svc := newFollowFixture(t)
	ctx := context.Background()

	_, err := svc.ToggleFollow(ctx, "a", "a")
	require.ErrorIs(t, err, ErrBadRequest)

	a, _ := repo.GetByID(ctx, "a")
	assert.Equal(t, 0, a.Following.Len())
	assert.Equal(t, 0, a.Followers.Len())
	assert.Empty(t, pub.events)
}

func TestToggleFollowUnknownUsers(t *testing.T) {
	_, _, svc := newFollowFixture(t)
	ctx := context.Background()

	_, err := svc.ToggleFollow(ctx, "a", "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ToggleFollow(ctx, "ghost", "a")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ToggleFollow(ctx, "", "a")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestToggleFollowPublishFailureIsNotFatal(t *testing.T) {
	_, pub, svc := newFollowFixture(t)
	pub.err = errors.New("broker down")

	state, err := svc.ToggleFollow(context.Background(), "a", "t")
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)
}

type partialRepo struct {
	*memory.UserRepository
}

func (partialRepo) SetFollow(context.Context, string, string, bool) (bool, error) {
	return false, repository.ErrPartialWrite
}

// staleActorRepo serves an actor snapshot taken before a concurrent toggle.
type staleActorRepo struct {
	*memory.UserRepository
	actor *entity.User
}

func (r staleActorRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if id == r.actor.ID {
		return r.actor.Clone(), nil
	}
	return r.UserRepository.GetByID(ctx, id)
}

func TestToggleFollowPublishesOnlyRealChanges(t *testing.T) {
	ctx := context.Background()
	repo, pub, _ := newFollowFixture(t)
	before, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	// the concurrent request that won the race
	require.NoError(t, repo.AddFollow(ctx, "a", "t"))

	svc := NewFollowService(staleActorRepo{UserRepository: repo, actor: before}, pub, helpers.NewDiscardLogger())
	state, err := svc.ToggleFollow(ctx, "a", "t")
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)
	assert.Empty(t, pub.events)

	n, err := repo.CountFollowers(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestToggleFollowPartialWriteIsInconsistent(t *testing.T) {
	repo, _, _ := newFollowFixture(t)
	svc := NewFollowService(partialRepo{repo}, nil, helpers.NewDiscardLogger())

	_, err := svc.ToggleFollow(context.Background(), "a", "t")
	require.ErrorIs(t, err, ErrInconsistent)
}

func TestListFollowersFollowingFirst(t *testing.T) {
	repo, _, svc := newFollowFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.AddFollow(ctx, id, "t"))
	}
	// carol follows the viewer back
	require.NoError(t, repo.AddFollow(ctx, "c", "v"))

	got, err := svc.ListFollowers(ctx, "t", "v", ListQuery{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.True(t, got[0].IsFollowing)
	assert.Equal(t, []string{"a", "b"}, []string{got[1].ID, got[2].ID})
	assert.False(t, got[1].IsFollowing)

	got, err = svc.ListFollowers(ctx, "t", "v", ListQuery{SearchText: "AR"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got, err = svc.ListFollowers(ctx, "t", "v", ListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got, err = svc.ListFollowers(ctx, "t", "v", ListQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListFollowingFlagsViewerEdges(t *testing.T) {
	repo, _, svc := newFollowFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.AddFollow(ctx, "t", id))
	}
	require.NoError(t, repo.AddFollow(ctx, "v", "b"))

	got, err := svc.ListFollowing(ctx, "t", "v", ListQuery{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	assert.True(t, got[0].IsFollowing)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "c", got[2].ID)

	empty, err := svc.ListFollowing(ctx, "a", "v", ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListFollowing(ctx, "ghost", "v", ListQuery{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCounts(t *testing.T) {
	repo, _, svc := newFollowFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.AddFollow(ctx, "a", "t"))
	require.NoError(t, repo.AddFollow(ctx, "b", "t"))
	require.NoError(t, repo.AddFollow(ctx, "t", "c"))

	followers, following, err := svc.Counts(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 2, followers)
	assert.Equal(t, 1, following)
}

func TestListQueryNormalize(t *testing.T) {
	assert.Equal(t, ListQuery{Limit: DefaultListLimit}, ListQuery{}.Normalize())
	assert.Equal(t, MaxListLimit, ListQuery{Limit: 5000}.Normalize().Limit)
	assert.Equal(t, 0, ListQuery{Limit: 3, Offset: -4}.Normalize().Offset)
	assert.Equal(t, 10, ParseIntDefault("abc", 10))
	assert.Equal(t, 7, ParseIntDefault("7", 10))
	assert.Equal(t, 10, ParseIntDefault("", 10))
}

func TestMatchesText(t *testing.T) {
	u := &entity.User{Name: "Jane Doe", Username: "jd_99", CreatedAt: time.Now()}
	assert.True(t, MatchesText(u, ""))
	assert.True(t, MatchesText(u, "doe"))
	assert.True(t, MatchesText(u, "D_9"))
	assert.False(t, MatchesText(u, "bob"))
}
