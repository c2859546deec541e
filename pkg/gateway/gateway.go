package gateway

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

	apiv1 "github.com/searchd-io/searchd/pkg/api/v1"
	"github.com/searchd-io/searchd/pkg/common"
	"github.com/searchd-io/searchd/pkg/sessions"
	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

type Gateway struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient

	httpServer *http.Server
	echo       *echo.Echo
	ctx        context.Context
	cancelFunc context.CancelFunc

	baseRouteGroup *echo.Group

	source         sources.Source
	postgresSource *sources.PostgresSource
	sessionManager *sessions.Manager
}

func NewGateway() (*Gateway, error) {
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

	// Local mode: skip Redis entirely
	if config.IsLocalMode() {
		log.Info().Msg("running in local mode - Redis and Postgres disabled")
	} else if len(config.Database.Redis.Addrs) > 0 {
		redisClient, err = common.NewRedisClient(config.Database.Redis, common.WithClientName("SearchdGateway"))
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	gateway := &Gateway{
		Config:      config,
		RedisClient: redisClient,
		ctx:         ctx,
		cancelFunc:  cancel,
	}

	if err := gateway.initSource(); err != nil {
		cancel()
		return nil, err
	}

	gateway.sessionManager = sessions.NewManager(
		gateway.source,
		config.Search,
		config.Gateway.SessionIdleTimeout,
	)

	return gateway, nil
}

// initSource builds the configured search backend and wraps it in the
// caching decorator.
func (g *Gateway) initSource() error {
	cfg := g.Config.Search

	var inner sources.Source
	switch cfg.Source {
	case "", "memory":
		inner = sources.NewMemorySource(sources.DefaultCorpus())

	case "redis":
		if g.RedisClient == nil {
			return fmt.Errorf("redis source requires redis configuration (mode: remote)")
		}
		redisSource := sources.NewRedisSource(g.RedisClient)
		if err := g.seedRedisIfEmpty(redisSource); err != nil {
			return err
		}
		inner = redisSource

	case "postgres":
		pg, err := sources.NewPostgresSource(g.Config.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run postgres migrations: %w", err)
		}
		g.postgresSource = pg
		inner = pg

	case "http":
		if cfg.Endpoint == "" {
			return fmt.Errorf("http source requires search.endpoint")
		}
		inner = sources.NewHTTPSource(cfg.Endpoint, nil)

	default:
		return &types.ErrSourceNotFound{Name: cfg.Source}
	}

	g.source = sources.NewCachedSource(inner, cfg.CacheTTL, cfg.CacheSize)

	log.Info().Str("source", inner.Name()).Msg("search source initialized")
	return nil
}

// seedRedisIfEmpty loads the demo corpus into an empty redis index so a
// fresh deployment answers queries immediately.
func (g *Gateway) seedRedisIfEmpty(src *sources.RedisSource) error {
	count, err := g.RedisClient.SCard(g.ctx, common.Keys.SearchIndex()).Result()
	if err != nil {
		return fmt.Errorf("failed to inspect search index: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := src.Seed(g.ctx, sources.DefaultCorpus()); err != nil {
		return err
	}
	log.Info().Msg("seeded demo corpus into redis")
	return nil
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.Gateway.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.Gateway.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.Gateway.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)

	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"), g.RedisClient)
	apiv1.NewSearchGroup(g.baseRouteGroup, g.source, g.sessionManager)

	return nil
}

// StartAsync starts the gateway servers without blocking.
func (g *Gateway) StartAsync() error {
	if err := g.initHTTP(); err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	// Reap idle sessions in the background
	go g.sessionManager.Start(g.ctx)

	go func() {
		lis, err := net.Listen("tcp", g.httpServer.Addr)
		if err != nil {
			log.Error().Err(err).Msg("failed to listen on http")
			return
		}

		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Msg("gateway http server running")

	return nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

// shutdown gracefully shuts down the gateway
func (g *Gateway) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), g.Config.Gateway.ShutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	// Stop HTTP server, if it ever started
	eg.Go(func() error {
		if g.httpServer == nil {
			return nil
		}
		return g.httpServer.Shutdown(ctx)
	})

	// Tear down live sessions (cancels debounce timers and in-flight fetches)
	eg.Go(func() error {
		g.sessionManager.Stop()
		return nil
	})

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}

	g.cancelFunc()

	if g.postgresSource != nil {
		g.postgresSource.Close()
	}
	if g.RedisClient != nil {
		g.RedisClient.Close()
	}
}
