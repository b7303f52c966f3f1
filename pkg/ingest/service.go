package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/appclacks/sleepslo/pkg/ingest/aggregates"
	"github.com/appclacks/sleepslo/pkg/ratelimit"
	sloaggregates "github.com/appclacks/sleepslo/pkg/slo/aggregates"
	er "github.com/mcorbin/corbierror"
	"github.com/prometheus/client_golang/prometheus"
)

type Store interface {
	UpsertNight(ctx context.Context, record sloaggregates.NightRecord) error
	InsertSMSEvent(ctx context.Context, event aggregates.SMSEvent) error
}

type Limiter interface {
	Check(key string) ratelimit.Decision
}

type Configuration struct {
	MaxMinutes int
	Location   *time.Location
}

type Service struct {
	logger   *slog.Logger
	store    Store
	limiter  Limiter
	config   Configuration
	clock    func() time.Time
	messages *prometheus.CounterVec
}

func New(logger *slog.Logger, store Store, limiter Limiter, config Configuration, registry *prometheus.Registry, clock func() time.Time) (*Service, error) {
	if config.Location == nil {
		return nil, er.New("the ingestion timezone is required", er.BadRequest, true)
	}
	if config.MaxMinutes <= 0 {
		return nil, er.Newf("the maximum sleep duration must be positive, got %d", er.BadRequest, true, config.MaxMinutes)
	}
	if clock == nil {
		clock = time.Now
	}
	messages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_ingest_total",
			Help: "Count the inbound messages by outcome",
		},
		[]string{"status"})
	err := registry.Register(messages)
	if err != nil {
		return nil, err
	}
	return &Service{
		logger:   logger,
		store:    store,
		limiter:  limiter,
		config:   config,
		clock:    clock,
		messages: messages,
	}, nil
}
