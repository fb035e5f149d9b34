package entity

import "time"

const (
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
)

// FollowEvent is published after a follow toggle commits.
type FollowEvent struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
