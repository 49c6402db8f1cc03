package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/navikt/brd-backend/pkg/config/v2"
	"github.com/navikt/brd-backend/pkg/requestlogger"
	"github.com/navikt/brd-backend/pkg/service/core"
	apiclients "github.com/navikt/brd-backend/pkg/service/core/api"
	"github.com/navikt/brd-backend/pkg/service/core/handlers"
	"github.com/navikt/brd-backend/pkg/service/core/routes"
	"github.com/navikt/brd-backend/pkg/service/core/storage/memory"
	"github.com/navikt/brd-backend/pkg/syncers/sessionsweeper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	flag "github.com/spf13/pflag"
)

var configFilePath = flag.String("config", "config.yaml", "path to config file")

const (
	MetricsNamespace    = "brd_backend"
	SessionSweeperDelay = 1 * time.Minute
	ShutdownTimeout     = 5 * time.Second
)

func main() {
	flag.Parse()

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileParts, err := config.ProcessConfigPath(*configFilePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("processing config path")
	}

	cfg, err := config.NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, "BRD", config.NewDefaultEnvBinder())
	if err != nil {
		zlog.Fatal().Err(err).Msg("loading config")
	}

	err = cfg.Validate()
	if err != nil {
		zlog.Fatal().Err(err).Msg("validating config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		zlog.Fatal().Err(err).Msg("parsing log level")
	}
	zlog = zlog.Level(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	apiClients, err := apiclients.NewClients(ctx, cfg, zlog.With().Str("subsystem", "api_clients").Logger())
	if err != nil {
		zlog.Fatal().Err(err).Msg("setting up api clients")
	}

	zlog.Info().
		Str("delivery", cfg.Pipeline.Delivery).
		Str("narrative", cfg.Pipeline.Narrative).
		Str("notify", cfg.Pipeline.Notify).
		Msg("pipeline stages")

	metrics := core.NewMetrics(MetricsNamespace)

	services := core.NewServices(
		&core.APIs{
			BRDAPI:       apiClients.BRDAPI,
			NarrativeAPI: apiClients.NarrativeAPI,
			DeliveryAPI:  apiClients.DeliveryAPI,
			NotifierAPI:  apiClients.NotifierAPI,
		},
		memory.NewSessionStorage(),
		cfg.Session.MaxIdle(),
		metrics,
		zlog,
	)

	if cfg.Session.MaxIdle() > 0 {
		sweeper := sessionsweeper.New(services.SessionService, zlog.With().Str("subsystem", "session_sweeper").Logger())
		go sweeper.Run(ctx, SessionSweeperDelay, cfg.Session.SweepInterval())
	}

	h := handlers.NewHandlers(services, int64(cfg.Server.MaxUploadMB)<<20, zlog)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestlogger.Middleware(zlog, "/internal/isalive", "/internal/metrics"))
	router.Use(middleware.Recoverer)

	routes.Add(router,
		routes.NewBRDRoutes(routes.NewBRDEndpoints(zlog, h.BRDHandler)),
		routes.NewSessionRoutes(routes.NewSessionEndpoints(zlog, h.SessionHandler)),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(prom(metrics.Collectors()...))),
	)

	if cfg.Debug {
		err = routes.Print(router, os.Stdout)
		if err != nil {
			zlog.Warn().Err(err).Msg("printing routes")
		}
	}

	server := http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("address", server.Addr).Msg("listening")

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("running server")
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn().Err(err).Msg("shutdown error")
	}
}

func prom(cols ...prometheus.Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(cols...)

	return r
}
