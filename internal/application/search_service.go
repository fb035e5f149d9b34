package application

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	repo "github.com/oksasatya/salon-connect/internal/domain/repository"
)

// maxIndexCandidates bounds the ids pulled from the search index per query.
const maxIndexCandidates = 500

// UserIndex mirrors user profiles into a search engine.
type UserIndex interface {
	IndexUser(ctx context.Context, u *entity.User) error
	SearchIDs(ctx context.Context, text string, size int) ([]string, error)
}

type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	UserImage string `json:"userImage"`
}

type SearchService struct {
	Users  repo.UserRepository
	Index  UserIndex
	Logger *logrus.Logger
}

func NewSearchService(users repo.UserRepository, index UserIndex, logger *logrus.Logger) *SearchService {
	return &SearchService{Users: users, Index: index, Logger: logger}
}

// SearchUsers returns up to limit users other than callerID whose name or
// username contains text. Users callerID follows come first, then the most
// recently created.
func (s *SearchService) SearchUsers(ctx context.Context, callerID, text string, limit int) ([]UserSummary, error) {
	text = strings.TrimSpace(text)
	limit = clampLimit(limit, MaxSearchLimit)

	candidates, err := s.candidates(ctx, callerID, text)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}

	type ranked struct {
		u         *entity.User
		following bool
	}
	rows := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == callerID || !MatchesText(c, text) {
			continue
		}
		rows = append(rows, ranked{u: c, following: c.IsFollowedBy(callerID)})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.following != b.following {
			return a.following
		}
		if !a.u.CreatedAt.Equal(b.u.CreatedAt) {
			return a.u.CreatedAt.After(b.u.CreatedAt)
		}
		return a.u.ID < b.u.ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]UserSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserSummary{ID: r.u.ID, Name: r.u.Name, Username: r.u.Username, UserImage: r.u.UserImage})
	}
	return out, nil
}

// candidates prefers the search index for non-empty text and falls back to a
// store scan when the index is absent or failing.
func (s *SearchService) candidates(ctx context.Context, callerID, text string) ([]*entity.User, error) {
	if s.Index != nil && text != "" {
		ids, err := s.Index.SearchIDs(ctx, text, maxIndexCandidates)
		if err == nil {
			if len(ids) == 0 {
				return nil, nil
			}
			return s.Users.Find(ctx, repo.UserFilter{IDs: ids, ExcludeID: callerID, Text: text})
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("user index search failed, scanning store")
		}
	}
	return s.Users.Find(ctx, repo.UserFilter{ExcludeID: callerID, Text: text})
}
