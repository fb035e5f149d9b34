package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/salon-connect/internal/container"
	handlers "github.com/oksasatya/salon-connect/internal/interface/http"
	"github.com/oksasatya/salon-connect/internal/interface/middleware"
)

// SocialModule wires the follow graph and user search. Every route requires auth.
type SocialModule struct {
	Handler  *handlers.FollowHandler
	Verifier middleware.TokenVerifier
}

func NewSocialModule(h *handlers.FollowHandler, verifier middleware.TokenVerifier) *SocialModule {
	return &SocialModule{Handler: h, Verifier: verifier}
}

func (m *SocialModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(rdb, m.Verifier))
	{
		auth.POST("/follow/:userId",
			middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserAndPath(), nil),
			m.Handler.ToggleFollow)
		auth.GET("/:userId/followers", m.Handler.Followers)
		auth.GET("/:userId/following", m.Handler.Following)
		auth.GET("/search",
			middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserAndPath(), nil),
			m.Handler.SearchUsers)
	}
}

func (m *SocialModule) Name() string { return "social" }
