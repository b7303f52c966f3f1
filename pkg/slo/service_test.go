package slo_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/slo"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListNightsSince(ctx context.Context, since civil.Date) ([]aggregates.NightRecord, error) {
	args := m.Called(ctx, since)
	records, _ := args.Get(0).([]aggregates.NightRecord)
	return records, args.Error(1)
}

func (m *mockStore) HasReplyOnLocalDate(ctx context.Context, date civil.Date) (bool, error) {
	args := m.Called(ctx, date)
	return args.Bool(0), args.Error(1)
}

func newService(t *testing.T, store slo.Store, now time.Time) *slo.Service {
	t.Helper()
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	service, err := slo.New(slog.Default(), store, slo.Configuration{
		ThresholdMinutes: 420,
		BurnStartDate:    date(t, "2026-02-20"),
		Location:         location,
	}, func() time.Time { return now })
	require.NoError(t, err)
	return service
}

func TestServiceReport(t *testing.T) {
	store := new(mockStore)
	// 03:00 UTC on March 4th is still March 3rd in New York
	now := time.Date(2026, 3, 4, 3, 0, 0, 0, time.UTC)
	service := newService(t, store, now)

	records := []aggregates.NightRecord{
		night(t, "2026-03-01", 420),
		night(t, "2026-03-02", 300),
	}
	store.On("ListNightsSince", mock.Anything, date(t, "2026-02-01")).Return(records, nil)

	report, err := service.Report(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, date(t, "2026-03-02"), report.EndDate)
	assert.Equal(t, "America/New_York", report.Timezone)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, 420, report.SLOMinutes)
	assert.Equal(t, date(t, "2026-02-20"), report.CumulativeBurnSeries[0].Date)
	assert.Equal(t, 1, report.CumulativeBurnSeries[len(report.CumulativeBurnSeries)-1].CumulativeBurn)
}

func TestServiceReportLoadsEarliestDate(t *testing.T) {
	store := new(mockStore)
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	service := newService(t, store, now)
	// the 30 nights window starts before the burn start date
	store.On("ListNightsSince", mock.Anything, date(t, "2026-02-02")).Return([]aggregates.NightRecord{}, nil)
	_, err := service.Report(context.Background())
	require.NoError(t, err)

	later := newService(t, store, time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC))
	store.On("ListNightsSince", mock.Anything, date(t, "2026-02-20")).Return([]aggregates.NightRecord{}, nil)
	_, err = later.Report(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestServiceReportStoreError(t *testing.T) {
	store := new(mockStore)
	service := newService(t, store, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC))
	store.On("ListNightsSince", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	_, err := service.Report(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestServiceThreshold(t *testing.T) {
	store := new(mockStore)
	service := newService(t, store, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, 420, service.Threshold())
	assert.NoError(t, service.SetThreshold(480))
	assert.Equal(t, 480, service.Threshold())
	assert.Error(t, service.SetThreshold(0))
	assert.Error(t, service.SetThreshold(-10))
	assert.Equal(t, 480, service.Threshold())

	store.On("ListNightsSince", mock.Anything, mock.Anything).Return([]aggregates.NightRecord{night(t, "2026-03-03", 450)}, nil)
	report, err := service.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 480, report.SLOMinutes)
	assert.Equal(t, aggregates.StatusDegraded, report.StatusHistory30[29].Status)
}

func TestServiceConfigurationErrors(t *testing.T) {
	location, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	_, err = slo.New(slog.Default(), new(mockStore), slo.Configuration{
		ThresholdMinutes: 0,
		BurnStartDate:    date(t, "2026-02-20"),
		Location:         location,
	}, nil)
	assert.ErrorContains(t, err, "must be positive")
	_, err = slo.New(slog.Default(), new(mockStore), slo.Configuration{
		ThresholdMinutes: 420,
		BurnStartDate:    date(t, "2026-02-20"),
	}, nil)
	assert.ErrorContains(t, err, "timezone")
	_, err = slo.New(slog.Default(), new(mockStore), slo.Configuration{
		ThresholdMinutes: 420,
		Location:         location,
	}, nil)
	assert.ErrorContains(t, err, "burn start date")
}

func TestExporter(t *testing.T) {
	store := new(mockStore)
	service := newService(t, store, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC))
	store.On("ListNightsSince", mock.Anything, mock.Anything).Return([]aggregates.NightRecord{
		night(t, "2026-03-01", 420),
		night(t, "2026-03-02", 300),
		night(t, "2026-03-03", 200),
	}, nil)
	store.On("HasReplyOnLocalDate", mock.Anything, date(t, "2026-03-04")).Return(true, nil)
	reg := prometheus.NewRegistry()
	exporter, err := slo.NewExporter(slog.Default(), service, reg, time.Minute)
	require.NoError(t, err)
	require.NoError(t, exporter.Export(context.Background()))

	expected := `
# HELP sleep_incidents_30d Nights under the SLO during the last 30 nights
# TYPE sleep_incidents_30d gauge
sleep_incidents_30d{severity="all"} 2
sleep_incidents_30d{severity="sev1"} 1
# HELP sleep_cumulative_burn Nights under the SLO since the burn start date
# TYPE sleep_cumulative_burn gauge
sleep_cumulative_burn 2
# HELP sleep_replied_today 1 if a reply was received on the current local date, 0 otherwise
# TYPE sleep_replied_today gauge
sleep_replied_today 1
# HELP sleep_slo_threshold_minutes Minutes of sleep required for a night to be OK
# TYPE sleep_slo_threshold_minutes gauge
sleep_slo_threshold_minutes 420
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"sleep_incidents_30d", "sleep_cumulative_burn", "sleep_replied_today", "sleep_slo_threshold_minutes")
	assert.NoError(t, err)
	count, err := testutil.GatherAndCount(reg, "sleep_reliability")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestExporterWithoutData(t *testing.T) {
	store := new(mockStore)
	service := newService(t, store, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC))
	store.On("ListNightsSince", mock.Anything, mock.Anything).Return([]aggregates.NightRecord{}, nil)
	store.On("HasReplyOnLocalDate", mock.Anything, mock.Anything).Return(false, nil)
	reg := prometheus.NewRegistry()
	exporter, err := slo.NewExporter(slog.Default(), service, reg, time.Minute)
	require.NoError(t, err)
	require.NoError(t, exporter.Export(context.Background()))
	count, err := testutil.GatherAndCount(reg, "sleep_reliability")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestServiceRepliedToday(t *testing.T) {
	store := new(mockStore)
	// 03:00 UTC on March 4th is still March 3rd in New York
	service := newService(t, store, time.Date(2026, 3, 4, 3, 0, 0, 0, time.UTC))
	store.On("HasReplyOnLocalDate", mock.Anything, date(t, "2026-03-03")).Return(true, nil).Once()
	replied, err := service.RepliedToday(context.Background())
	require.NoError(t, err)
	assert.True(t, replied)

	store.On("HasReplyOnLocalDate", mock.Anything, date(t, "2026-03-03")).Return(false, errors.New("boom")).Once()
	_, err = service.RepliedToday(context.Background())
	assert.ErrorContains(t, err, "boom")
	store.AssertExpectations(t)
}
