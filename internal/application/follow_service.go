package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	repo "github.com/oksasatya/salon-connect/internal/domain/repository"
)

type FollowState string

const (
	StateFollowed   FollowState = "followed"
	StateUnfollowed FollowState = "unfollowed"
)

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// FollowEntry is the projection returned by follower/following listings.
type FollowEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	UserImage   string `json:"userImage"`
	IsFollowing bool   `json:"isFollowing"`
}

type FollowService struct {
	Users  repo.UserRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewFollowService(users repo.UserRepository, events EventPublisher, logger *logrus.Logger) *FollowService {
	return &FollowService{Users: users, Events: events, Logger: logger}
}

// ToggleFollow follows targetID when actorID does not follow it yet and
// unfollows it otherwise. Both sides of the edge change in one repository call.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID string) (FollowState, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)
	if actorID == "" || targetID == "" {
		return "", badRequest("missing user id")
	}
	if actorID == targetID {
		return "", ErrSelfFollow
	}

	target, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		return "", storeErr(err, ErrUserNotFound)
	}
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		return "", storeErr(err, ErrUserNotFound)
	}

	follow := !actor.Follows(target.ID)
	state, event := StateFollowed, entity.EventUserFollowed
	if !follow {
		state, event = StateUnfollowed, entity.EventUserUnfollowed
	}
	changed, err := s.Users.SetFollow(ctx, actor.ID, target.ID, follow)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"actor_id": actor.ID, "target_id": target.ID}).Error("follow toggle failed")
		}
		return "", storeErr(err, ErrUserNotFound)
	}

	// a concurrent toggle already applied this edge and published for it
	if changed {
		s.publish(ctx, entity.FollowEvent{Type: event, ActorID: actor.ID, TargetID: target.ID, OccurredAt: time.Now().UTC()})
	}
	return state, nil
}

func (s *FollowService) publish(ctx context.Context, ev entity.FollowEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", ev.Type).Warn("publish follow event failed")
	}
}

// ListFollowers lists userID's followers. IsFollowing is set when the
// follower's own following set contains viewerID.
func (s *FollowService) ListFollowers(ctx context.Context, userID, viewerID string, q ListQuery) ([]FollowEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	return s.list(ctx, u.Followers.Slice(), q, func(c *entity.User) bool {
		return c.Follows(viewerID)
	})
}

// ListFollowing lists the users userID follows, flagging those viewerID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID, viewerID string, q ListQuery) ([]FollowEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	return s.list(ctx, u.Following.Slice(), q, func(c *entity.User) bool {
		return c.IsFollowedBy(viewerID)
	})
}

func (s *FollowService) list(ctx context.Context, ids []string, q ListQuery, isFollowing func(*entity.User) bool) ([]FollowEntry, error) {
	q = q.Normalize()
	if len(ids) == 0 {
		return []FollowEntry{}, nil
	}
	candidates, err := s.Users.Find(ctx, repo.UserFilter{IDs: ids, Text: q.SearchText})
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}

	entries := make([]FollowEntry, 0, len(candidates))
	for _, c := range candidates {
		if !MatchesText(c, q.SearchText) {
			continue
		}
		entries = append(entries, FollowEntry{
			ID:          c.ID,
			Name:        c.Name,
			Username:    c.Username,
			UserImage:   c.UserImage,
			IsFollowing: isFollowing(c),
		})
	}
	// stable: ties keep the edge insertion order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].IsFollowing && !entries[j].IsFollowing
	})

	start, end := window(len(entries), q.Offset, q.Limit)
	return entries[start:end], nil
}

// Counts returns the follower and following totals of userID.
func (s *FollowService) Counts(ctx context.Context, userID string) (followers, following int, err error) {
	if followers, err = s.Users.CountFollowers(ctx, userID); err != nil {
		return 0, 0, storeErr(err, ErrUserNotFound)
	}
	if following, err = s.Users.CountFollowing(ctx, userID); err != nil {
		return 0, 0, storeErr(err, ErrUserNotFound)
	}
	return followers, following, nil
}

// MatchesText reports whether text is a case-insensitive substring of the
// user's name or username. Empty text matches everyone.
func MatchesText(u *entity.User, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(u.Name), needle) ||
		strings.Contains(strings.ToLower(u.Username), needle)
}
