package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/appclacks/sleepslo/config"
	"github.com/appclacks/sleepslo/internal/database"
	"github.com/appclacks/sleepslo/internal/http"
	"github.com/appclacks/sleepslo/internal/http/handlers"
	"github.com/appclacks/sleepslo/pkg/ingest"
	"github.com/appclacks/sleepslo/pkg/ratelimit"
	"github.com/appclacks/sleepslo/pkg/slo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func buildServerCmd(logLevel *string, logFormat *string) *cobra.Command {
	var configFile string
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Runs the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			logger := buildLogger(*logLevel, *logFormat)
			err := runServer(logger, configFile)
			if err != nil {
				logger.Error(err.Error())
				os.Exit(2)
			}
		},
	}
	serverCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the YAML configuration file")
	err := serverCmd.MarkFlagRequired("config")
	if err != nil {
		panic(err)
	}
	return serverCmd
}

func runServer(logger *slog.Logger, configFile string) error {
	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}
	location, err := conf.SLO.Location()
	if err != nil {
		return err
	}
	burnStart, err := conf.SLO.BurnStart()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := setupTracing(ctx, conf.Tracing)
	if err != nil {
		return err
	}
	store, err := database.New(logger, conf.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.DefaultRegisterer.(*prometheus.Registry)
	limiter, err := ratelimit.New(logger, ratelimit.Configuration{
		Window:      conf.RateLimit.Window(),
		MaxRequests: conf.RateLimit.MaxRequests,
		MaxKeys:     conf.RateLimit.MaxKeys,
	}, registry, nil)
	if err != nil {
		return err
	}
	ingestService, err := ingest.New(logger, store, limiter, ingest.Configuration{
		MaxMinutes: conf.Ingest.MaxMinutes,
		Location:   location,
	}, registry, nil)
	if err != nil {
		return err
	}
	sloService, err := slo.New(logger, store, slo.Configuration{
		ThresholdMinutes: conf.SLO.ThresholdMinutes,
		BurnStartDate:    burnStart,
		Location:         location,
	}, nil)
	if err != nil {
		return err
	}
	exporter, err := slo.NewExporter(logger, sloService, registry, conf.SLO.ExportInterval)
	if err != nil {
		return err
	}

	handlersBuilder := handlers.NewBuilder(ingestService, sloService, conf.HTTP.SMS.Number, conf.Ingest.MaxMinutes)
	server, err := http.NewServer(logger, conf.HTTP, registry, handlersBuilder)
	if err != nil {
		return err
	}

	go func() {
		err := config.Watch(ctx, logger, configFile, func(newConfig config.Configuration) {
			if err := sloService.SetThreshold(newConfig.SLO.ThresholdMinutes); err != nil {
				logger.Warn(err.Error())
			}
		})
		if err != nil {
			logger.Error(err.Error())
		}
	}()

	signals := make(chan os.Signal, 1)
	errChan := make(chan error)

	signal.Notify(
		signals,
		syscall.SIGINT,
		syscall.SIGTERM)

	exporter.Start()
	server.Start()
	go func() {
		for sig := range signals {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Info(fmt.Sprintf("received signal %s, starting shutdown", sig))
				signal.Stop(signals)
				exporter.Stop()
				cancel()
				err := server.Stop()
				if err != nil {
					errChan <- err
					return
				}
				errChan <- shutdownTracing(context.Background())
				return
			}
		}
	}()
	exitErr := <-errChan
	return exitErr
}
