package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/container"
	"github.com/oksasatya/salon-connect/internal/infrastructure/search"
	"github.com/oksasatya/salon-connect/internal/interface/middleware"
	"github.com/oksasatya/salon-connect/internal/router"
	"github.com/oksasatya/salon-connect/pkg/helpers"
	"github.com/oksasatya/salon-connect/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Store: postgres (with migrations), mongo or memory
	closeStore, err := container.OpenStore(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer closeStore()

	// Redis
	rdb := helpers.NewRedisClient(cfg)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis not reachable; sessions and rate limits will fail until it is")
	}
	container.SetRedis(rdb)

	// JWT
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	// RabbitMQ follow events; the API keeps working without a broker
	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQFollowQueue); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; follow events disabled")
	} else {
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	// Elasticsearch users index
	if es, err := helpers.NewESClient(cfg); err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; user index disabled")
	} else {
		idx := search.NewUserIndex(es, cfg.ESUsersIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index check failed")
		}
		container.SetUserIndex(idx)
	}

	// Avatar object store
	images, closeImages, err := newImageStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init image store: %v", err)
	}
	defer closeImages()
	container.SetImageStore(images)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r, logger)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func newImageStore(ctx context.Context, cfg *config.Config) (application.ImageStore, func(), error) {
	if cfg.ImageStore == "s3" {
		s, err := helpers.NewS3Store(ctx, helpers.S3Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		return nil, nil, err
	}
	return helpers.NewGCSStore(gcsClient, cfg.GCSBucket), func() { _ = gcsClient.Close() }, nil
}
