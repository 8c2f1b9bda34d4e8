package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/customeros/maildesk/api"
	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/internal/cron"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/services"
	"github.com/customeros/maildesk/services/storage"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

// NewServer wires logging, tracing, storage and services on top of the local filesystem.
func NewServer(cfg *config.Config) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	repos, err := InitRepositories(cfg, afero.NewOsFs(), appLogger)
	if err != nil {
		return nil, err
	}

	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cron.NewCronManager(cfg.CronConfig, appLogger, svcs.AttachmentSweeper),
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppConfig.APIPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// InitRepositories builds both stores on fs, with the object storage mirror when one
// is configured.
func InitRepositories(cfg *config.Config, fs afero.Fs, log logger.Logger) (*repository.Repositories, error) {
	mirror, err := storage.NewMirror(cfg.StorageMirrorConfig)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize storage mirror")
	}
	return repository.InitRepositories(fs, cfg.AppConfig.DataFile, cfg.AppConfig.AttachmentsDir, mirror, log), nil
}

func (s *Server) Initialize(ctx context.Context) error {
	if err := s.repositories.Init(ctx); err != nil {
		return err
	}

	api.RegisterRoutes(s.router, s.services, s.repositories, s.config.AppConfig, s.log)

	return s.cronManager.StartCron()
}

func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	go func() {
		defer tracing.RecoverAndLogToJaeger(s.log)
		s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("HTTP server error: %v", err)
		}
	}()
	s.log.Info("Maildesk is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer tracing.RecoverAndLogToJaeger(s.log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	s.log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	s.cronManager.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.log.Info("HTTP server shut down successfully")
	}

	if err := s.services.EventsService.Publisher.Close(); err != nil {
		s.log.Warnf("Failed to close event publisher: %v", err)
	}

	if s.tracerCloser != nil {
		_ = s.tracerCloser.Close()
	}

	_ = s.log.Sync()
	return nil
}
