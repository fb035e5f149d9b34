package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/salon-connect/internal/container"
	handlers "github.com/oksasatya/salon-connect/internal/interface/http"
	"github.com/oksasatya/salon-connect/internal/interface/middleware"
)

// SalonModule wires salon listing and management.
// Public: GET /salons, /salons/nearby, /salons/:id
// Protected: POST /salons, PUT|DELETE /salons/:id, POST /salons/:id/reviews
type SalonModule struct {
	Handler  *handlers.SalonHandler
	Verifier middleware.TokenVerifier
}

func NewSalonModule(h *handlers.SalonHandler, verifier middleware.TokenVerifier) *SalonModule {
	return &SalonModule{Handler: h, Verifier: verifier}
}

func (m *SalonModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	public := rg.Group("/salons")
	public.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil))
	{
		public.GET("", m.Handler.List)
		public.GET("/nearby", m.Handler.Nearby)
		public.GET("/:id", m.Handler.Get)
	}

	auth := rg.Group("/salons")
	auth.Use(middleware.Auth(rdb, m.Verifier))
	auth.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserAndPath(), nil))
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/reviews", m.Handler.AddReview)
	}
}

func (m *SalonModule) Name() string { return "salon" }
