package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/pkg/response"
)

type FollowHandler struct {
	Follow *application.FollowService
	Search *application.SearchService
	Logger *logrus.Logger
}

func NewFollowHandler(follow *application.FollowService, search *application.SearchService, logger *logrus.Logger) *FollowHandler {
	return &FollowHandler{Follow: follow, Search: search, Logger: logger}
}

// ToggleFollow follows or unfollows :userId on behalf of the caller.
func (h *FollowHandler) ToggleFollow(c *gin.Context) {
	state, err := h.Follow.ToggleFollow(c.Request.Context(), currentUserID(c), c.Param("userId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": state}, "user "+string(state), nil)
}

func listQuery(c *gin.Context) application.ListQuery {
	return application.ListQuery{
		SearchText: c.Query("searchText"),
		Limit:      application.ParseIntDefault(c.Query("limit"), application.DefaultListLimit),
		Offset:     application.ParseIntDefault(c.Query("offset"), 0),
	}
}

func (h *FollowHandler) Followers(c *gin.Context) {
	q := listQuery(c)
	entries, err := h.Follow.ListFollowers(c.Request.Context(), c.Param("userId"), currentUserID(c), q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	q = q.Normalize()
	response.Success(c, http.StatusOK, entries, "followers", gin.H{"limit": q.Limit, "offset": q.Offset, "count": len(entries)})
}

func (h *FollowHandler) Following(c *gin.Context) {
	q := listQuery(c)
	entries, err := h.Follow.ListFollowing(c.Request.Context(), c.Param("userId"), currentUserID(c), q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	q = q.Normalize()
	response.Success(c, http.StatusOK, entries, "following", gin.H{"limit": q.Limit, "offset": q.Offset, "count": len(entries)})
}

// SearchUsers finds users other than the caller by name or username.
func (h *FollowHandler) SearchUsers(c *gin.Context) {
	limit := application.ParseIntDefault(c.Query("limit"), application.DefaultListLimit)
	users, err := h.Search.SearchUsers(c.Request.Context(), currentUserID(c), c.Query("text"), limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}
