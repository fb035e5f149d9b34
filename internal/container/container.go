package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router modules are auto-wired from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager
	rabbitPub   *helpers.RabbitPublisher
	userIndex   application.UserIndex
	imageStore  application.ImageStore

	userRepo  repository.UserRepository
	salonRepo repository.SalonRepository
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }

func SetUserIndex(i application.UserIndex)   { userIndex = i }
func GetUserIndex() application.UserIndex    { return userIndex }
func SetImageStore(s application.ImageStore) { imageStore = s }
func GetImageStore() application.ImageStore  { return imageStore }

func SetRepositories(users repository.UserRepository, salons repository.SalonRepository) {
	userRepo, salonRepo = users, salons
}
func GetUserRepo() repository.UserRepository   { return userRepo }
func GetSalonRepo() repository.SalonRepository { return salonRepo }

// GetEventPublisher returns nil (not a typed nil) when RabbitMQ is not connected.
func GetEventPublisher() application.EventPublisher {
	if rabbitPub == nil {
		return nil
	}
	return rabbitPub
}
