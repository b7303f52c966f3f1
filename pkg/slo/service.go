package slo

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
	er "github.com/mcorbin/corbierror"
)

type Store interface {
	ListNightsSince(ctx context.Context, since civil.Date) ([]aggregates.NightRecord, error)
	HasReplyOnLocalDate(ctx context.Context, date civil.Date) (bool, error)
}

type Configuration struct {
	ThresholdMinutes int
	BurnStartDate    civil.Date
	Location         *time.Location
}

type Service struct {
	logger        *slog.Logger
	store         Store
	threshold     atomic.Int64
	burnStartDate civil.Date
	location      *time.Location
	clock         func() time.Time
}

func New(logger *slog.Logger, store Store, config Configuration, clock func() time.Time) (*Service, error) {
	if config.Location == nil {
		return nil, er.New("the SLO timezone is required", er.BadRequest, true)
	}
	if !config.BurnStartDate.IsValid() {
		return nil, er.Newf("invalid burn start date %s", er.BadRequest, true, config.BurnStartDate.String())
	}
	if clock == nil {
		clock = time.Now
	}
	service := &Service{
		logger:        logger,
		store:         store,
		burnStartDate: config.BurnStartDate,
		location:      config.Location,
		clock:         clock,
	}
	if err := service.SetThreshold(config.ThresholdMinutes); err != nil {
		return nil, err
	}
	return service, nil
}

// SetThreshold replaces the SLO used by subsequent reports. A report being
// computed keeps the threshold it started with.
func (s *Service) SetThreshold(minutes int) error {
	if minutes <= 0 {
		return er.Newf("the SLO threshold must be positive, got %d", er.BadRequest, true, minutes)
	}
	previous := s.threshold.Swap(int64(minutes))
	if previous != 0 && previous != int64(minutes) {
		s.logger.Info(fmt.Sprintf("SLO threshold updated from %d to %d minutes", previous, minutes))
	}
	return nil
}

func (s *Service) Threshold() int {
	return int(s.threshold.Load())
}

func (s *Service) Report(ctx context.Context) (*aggregates.ReliabilityReport, error) {
	now := s.clock()
	threshold := s.Threshold()
	// a reply received on day D describes the night of D-1
	endDate := civil.DateOf(now.In(s.location)).AddDays(-1)
	since := s.burnStartDate
	windowStart := endDate.AddDays(-(LongWindowNights - 1))
	if windowStart.Before(since) {
		since = windowStart
	}
	records, err := s.store.ListNightsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fail to list nights since %s: %w", since, err)
	}
	s.logger.Debug(fmt.Sprintf("computing reliability report ending %s on %d nights", endDate, len(records)))
	report := Aggregate(records, threshold, endDate, s.burnStartDate)
	report.GeneratedAt = now.UTC()
	report.Timezone = s.location.String()
	return &report, nil
}

func (s *Service) Nights(ctx context.Context, since civil.Date) ([]aggregates.NightRecord, error) {
	return s.store.ListNightsSince(ctx, since)
}

// RepliedToday reports whether a reply was already received on the current
// local date.
func (s *Service) RepliedToday(ctx context.Context) (bool, error) {
	today := civil.DateOf(s.clock().In(s.location))
	replied, err := s.store.HasReplyOnLocalDate(ctx, today)
	if err != nil {
		return false, fmt.Errorf("fail to check the replies of %s: %w", today, err)
	}
	return replied, nil
}
