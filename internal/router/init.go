package router

import (
	"strings"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/container"
	handlers "github.com/oksasatya/salon-connect/internal/interface/http"
	"github.com/oksasatya/salon-connect/internal/router/modules"
)

type Deps struct {
	UserHandler   *handlers.UserHandler
	FollowHandler *handlers.FollowHandler
	SalonHandler  *handlers.SalonHandler
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users := container.GetUserRepo()

	follow := application.NewFollowService(users, container.GetEventPublisher(), logger)

	var searchIndex application.UserIndex
	if strings.EqualFold(cfg.UserSearchBackend, "elasticsearch") {
		searchIndex = container.GetUserIndex()
	}
	search := application.NewSearchService(users, searchIndex, logger)

	userSvc := application.NewService(
		users,
		follow,
		container.GetJWT(),
		container.GetImageStore(),
		container.GetRedis(),
		logger,
		container.GetUserIndex(),
	)
	salonSvc := application.NewSalonService(container.GetSalonRepo(), container.GetRedis(), logger)

	return Deps{
		UserHandler:   handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure),
		FollowHandler: handlers.NewFollowHandler(follow, search, logger),
		SalonHandler:  handlers.NewSalonHandler(salonSvc, logger),
	}
}

// InitModules builds services from the container and registers every module.
// Call once during startup after the container is populated.
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()
	r.Add(modules.NewUserModule(deps.UserHandler, jwt))
	r.Add(modules.NewSocialModule(deps.FollowHandler, jwt))
	r.Add(modules.NewSalonModule(deps.SalonHandler, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
