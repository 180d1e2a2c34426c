package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/JBibu/zerobyte/pkg/api/v1"
	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/repository"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/JBibu/zerobyte/pkg/volume"
)

// Server hosts the volume service: the mount orchestrator, its HTTP API, and
// the background health monitor.
type Server struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient
	BackendRepo *repository.PostgresBackend

	httpServer *http.Server
	echo       *echo.Echo
	ctx        context.Context
	cancelFunc context.CancelFunc

	baseRouteGroup *echo.Group

	volumeRepo   repository.VolumeRepository
	resolver     *secrets.StoreResolver
	eventBus     *common.EventBus
	orchestrator *volume.Orchestrator
	monitor      *Monitor
}

func NewServer() (*Server, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()

	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	var redisClient *common.RedisClient
	var backendRepo *repository.PostgresBackend
	var volumeRepo repository.VolumeRepository
	var secretStore secrets.Store

	// Local mode: skip Redis and Postgres
	if config.IsLocalMode() {
		log.Info().Msg("running in local mode - Redis and Postgres disabled")
		volumeRepo = repository.NewMemoryVolumeRepository()
		secretStore = secrets.NewMemoryStore()
	} else {
		redisClient, err = common.NewRedisClient(config.Database.Redis, common.WithClientName("ZerobyteServer"))
		if err != nil {
			return nil, err
		}

		backendRepo, err = repository.NewPostgresBackend(config.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := backendRepo.RunMigrations(); err != nil {
			return nil, fmt.Errorf("failed to run postgres migrations: %w", err)
		}
		volumeRepo = backendRepo
		secretStore = backendRepo
	}

	cipherKey := config.Secrets.Key
	if cipherKey == "" {
		// Without a configured key secrets cannot survive restarts, which is
		// acceptable only in local mode.
		if !config.IsLocalMode() {
			return nil, fmt.Errorf("secrets.key must be configured in remote mode")
		}
		cipherKey, err = secrets.GenerateKey()
		if err != nil {
			return nil, err
		}
	}
	cipher, err := secrets.NewCipher(cipherKey)
	if err != nil {
		return nil, err
	}
	resolver := secrets.NewStoreResolver(secretStore, cipher)

	ctx, cancel := context.WithCancel(context.Background())
	eventBus := common.NewEventBus(ctx, redisClient)

	platform := volume.DetectPlatform()
	caps := volume.DetectCapabilities()
	log.Info().
		Bool("mount_cifs", caps.MountCifs).
		Bool("mount_nfs", caps.MountNfs).
		Bool("rclone", caps.Rclone).
		Msg("detected host mount capabilities")

	orchestrator := volume.NewOrchestrator(volume.Config{
		MountBase: config.Storage.MountBase,
		Platform:  platform,
		Runner:    common.OSRunner{},
		Secrets:   resolver,
		Mounts:    volume.SystemMountTable{},
		Caps:      caps,
		Events:    eventBus,
	})

	server := &Server{
		Config:       config,
		RedisClient:  redisClient,
		BackendRepo:  backendRepo,
		ctx:          ctx,
		cancelFunc:   cancel,
		volumeRepo:   volumeRepo,
		resolver:     resolver,
		eventBus:     eventBus,
		orchestrator: orchestrator,
	}

	if config.Monitor.Enabled {
		server.monitor = NewMonitor(orchestrator, volumeRepo, config.Monitor.Interval)
	}

	return server, nil
}

func (s *Server) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if s.Config.Server.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.Config.Server.HTTP.CORS.AllowedOrigins,
		AllowHeaders: s.Config.Server.HTTP.CORS.AllowedHeaders,
		AllowMethods: s.Config.Server.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	s.echo = e
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Config.Server.HTTP.Host, s.Config.Server.HTTP.Port),
		Handler: e,
	}

	s.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)

	// Health stays open; everything else requires the configured token.
	auth := apiv1.AuthMiddleware(s.Config.Server.AuthToken)

	apiv1.NewHealthGroup(s.baseRouteGroup.Group("/health"), s.RedisClient)
	apiv1.NewVolumesGroup(s.baseRouteGroup.Group("/volumes", auth), s.volumeRepo, s.orchestrator)
	apiv1.NewSecretsGroup(s.baseRouteGroup.Group("/secrets", auth), s.resolver)

	// The desktop shell asks for a graceful stop over HTTP when the window
	// closes.
	s.baseRouteGroup.POST("/shutdown", func(c echo.Context) error {
		go s.cancelFunc()
		return c.NoContent(http.StatusAccepted)
	}, auth)

	return nil
}

// StartAsync starts the server without blocking.
func (s *Server) StartAsync() error {
	if err := s.initHTTP(); err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	go s.eventBus.Start()

	if s.monitor != nil {
		go s.monitor.Run(s.ctx)
	}

	// Start HTTP server
	go func() {
		addr := s.httpServer.Addr
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Error().Err(err).Msg("failed to listen on http")
			return
		}

		if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", s.Config.Server.HTTP.Host).
		Int("port", s.Config.Server.HTTP.Port).
		Msg("volume service http server running")

	return nil
}

// Start runs the server until a termination signal or a shutdown request
// arrives.
func (s *Server) Start() error {
	if err := s.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)

	select {
	case <-terminationSignal:
		log.Info().Msg("termination signal received. shutting down...")
	case <-s.ctx.Done():
		log.Info().Msg("shutdown requested. shutting down...")
	}

	s.shutdown()
	return nil
}

// Shutdown gracefully shuts down the server (exported for external use)
func (s *Server) Shutdown() {
	s.shutdown()
}

func (s *Server) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}

	s.releaseAll(shutdownCtx)

	s.cancelFunc()

	if s.BackendRepo != nil {
		s.BackendRepo.Close()
	}
	if s.RedisClient != nil {
		s.RedisClient.Close()
	}
}

// releaseAll unmounts every network volume so no CIFS/NFS mounts outlive the
// service. Directory volumes have nothing to release.
func (s *Server) releaseAll(ctx context.Context) {
	volumes, err := s.volumeRepo.ListVolumes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list volumes during shutdown")
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, vol := range volumes {
		if vol.Config.Backend == types.BackendDirectory {
			continue
		}

		group.Go(func() error {
			if result := s.orchestrator.Release(groupCtx, vol); result.Failed() {
				log.Warn().Str("volume", vol.Name).Str("error", result.Error).Msg("failed to release volume during shutdown")
			}
			return nil
		})
	}
	group.Wait()
}
