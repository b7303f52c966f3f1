package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/appclacks/sleepslo/internal/http/handlers"
	"github.com/appclacks/sleepslo/internal/http/middlewares"
	"github.com/appclacks/sleepslo/internal/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

type Server struct {
	config *Configuration
	server *echo.Echo
	wg     sync.WaitGroup
	logger *slog.Logger
}

type CustomValidator struct {
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := validator.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(logger *slog.Logger, config Configuration, registry *prometheus.Registry, builder *handlers.Builder) (*Server, error) {
	err := validator.Validator.Struct(config)
	if err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{}
	e.HTTPErrorHandler = errorHandler(logger)

	metrics, err := middlewares.Metrics(registry, logger)
	if err != nil {
		return nil, err
	}
	e.Use(otelecho.Middleware("sleepslo", otelecho.WithSkipper(func(ec echo.Context) bool {
		return ec.Path() == "/metrics" || ec.Path() == "/healthz"
	})))
	e.Use(metrics)
	e.GET("/healthz", builder.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiGroup := e.Group("/api/v1")
	apiGroup.POST("/sms/inbound", builder.InboundSMS,
		middlewares.VerifySignature(config.SMS.AuthToken, config.SMS.PublicURL, logger))

	readMiddlewares := []echo.MiddlewareFunc{}
	if config.BasicAuth.Username != "" {
		readMiddlewares = append(readMiddlewares, middleware.BasicAuth(basicAuthValidator(config.BasicAuth)))
	}
	apiGroup.GET("/stats", builder.Stats, readMiddlewares...)
	apiGroup.GET("/nights", builder.ListNights, readMiddlewares...)
	apiGroup.POST("/parse", builder.Parse, readMiddlewares...)

	return &Server{
		server: e,
		config: &config,
		logger: logger,
	}, nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.server
}

func (s *Server) Start() {
	address := fmt.Sprintf("[%s]:%d", s.config.Host, s.config.Port)
	s.logger.Info(fmt.Sprintf("http server starting on %s", address))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		var err error
		if s.config.Cert != "" {
			s.logger.Info("tls is enabled on the http server")
			tlsConfig, err := getTLSConfig(s.config.Key, s.config.Cert, s.config.Cacert, s.config.ServerName, s.config.Insecure)
			if err != nil {
				s.logger.Error(fmt.Sprintf("fail to create tls configuration: %s", err.Error()))
				os.Exit(2)
				return
			}

			s.server.TLSServer.TLSConfig = tlsConfig
			tlsServer := s.server.TLSServer
			tlsServer.Addr = address
			if !s.server.DisableHTTP2 {
				tlsServer.TLSConfig.NextProtos = append(tlsServer.TLSConfig.NextProtos, "h2")
			}
			err = s.server.StartServer(tlsServer)
		} else {
			err = s.server.Start(address)
		}
		if err != http.ErrServerClosed {
			s.logger.Error(fmt.Sprintf("http server error: %s", err.Error()))
			os.Exit(2)
		}
	}()
}

func (s *Server) Stop() error {
	s.logger.Info("stopping the http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
