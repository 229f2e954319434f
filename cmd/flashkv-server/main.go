package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/flashkv/flashkv/internal/infra/buildinfo"
	"github.com/flashkv/flashkv/internal/infra/confloader"
	"github.com/flashkv/flashkv/internal/infra/shutdown"
	"github.com/flashkv/flashkv/internal/server/config"
	"github.com/flashkv/flashkv/internal/server/metricsserver"
	"github.com/flashkv/flashkv/internal/server/redisserver"
	"github.com/flashkv/flashkv/internal/storage"
	"github.com/flashkv/flashkv/internal/telemetry/logger"
	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		host        = flag.String("host", "", "Listen host, overrides server.addr from config")
		port        = flag.Int("port", 0, "Listen port, overrides server.addr from config")
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile, *host, *port)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	logger.SetSensitiveValuePrefixes(cfg.Log.SensitiveValuePrefixes...)

	log.Info("starting flashkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	engine := storage.New()
	sweeper := storage.NewSweeper(engine, cfg.Sweeper.SweeperConfig())

	metrics := metric.NewRegistry()
	metrics.RegisterStorage(engine)

	redisCfg := redisserver.Config{
		Address:      cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.RateLimit.CommandsPerSecond,
	}
	server := redisserver.New(redisCfg, engine, log)
	server.SetMetrics(metrics)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	shutdownHandler.OnShutdown("sweeper", func(ctx context.Context) error {
		log.Info("stopping expiry sweeper")
		cancelSweep()
		return nil
	})
	go sweeper.Run(sweepCtx)

	serverCtx, cancelServer := context.WithCancel(context.Background())
	shutdownHandler.OnShutdown("redis-server", func(ctx context.Context) error {
		log.Info("shutting down redis server")
		cancelServer()
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("redis server listening", "addr", cfg.Server.Addr)
		if err := server.Start(serverCtx); err != nil {
			log.Error("redis server error", "error", err)
		}
	}()

	var metricsSrv *metricsserver.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metricsserver.New(cfg.Metrics.Addr, metrics)
		shutdownHandler.OnShutdown("metrics-server", func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})

		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment, then applies
// --host/--port overrides, which take precedence over both.
func loadConfig(configFile, host string, port int) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if host != "" || port != 0 {
		h, p, splitErr := net.SplitHostPort(cfg.Server.Addr)
		if splitErr != nil {
			h, p = cfg.Server.Addr, ""
		}
		if host != "" {
			h = host
		}
		if port != 0 {
			p = strconv.Itoa(port)
		}
		cfg.Server.Addr = net.JoinHostPort(h, p)
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
