package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/salon-connect/internal/container"
	handlers "github.com/oksasatya/salon-connect/internal/interface/http"
	"github.com/oksasatya/salon-connect/internal/interface/middleware"
)

// UserModule wires account and profile routes.
// Public: POST /register, /login, /refresh
// Protected: POST /logout, GET|PUT /profile, POST /profile/avatar
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, verifier middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Verifier: verifier}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.Verifier))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserAndPath(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.GET("/users/by-username/:username", m.Handler.ViewByUsername)
		auth.GET("/users/username-available", m.Handler.UsernameAvailable)
	}
}

func (m *UserModule) Name() string { return "user" }
