package slo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
	"github.com/prometheus/client_golang/prometheus"
)

type Reporter interface {
	Report(ctx context.Context) (*aggregates.ReliabilityReport, error)
	RepliedToday(ctx context.Context) (bool, error)
}

// Exporter periodically publishes the reliability report as Prometheus
// gauges.
type Exporter struct {
	logger     *slog.Logger
	reporter   Reporter
	threshold  prometheus.Gauge
	burn       prometheus.Gauge
	replied    prometheus.Gauge
	values     *prometheus.GaugeVec
	incidents  *prometheus.GaugeVec
	executions *prometheus.CounterVec
	interval   time.Duration
	wg         sync.WaitGroup
	stop       chan bool
	ticker     *time.Ticker
}

func NewExporter(logger *slog.Logger, reporter Reporter, registry *prometheus.Registry, interval time.Duration) (*Exporter, error) {
	threshold := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sleep_slo_threshold_minutes",
		Help: "Minutes of sleep required for a night to be OK",
	})
	burn := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sleep_cumulative_burn",
		Help: "Nights under the SLO since the burn start date",
	})
	replied := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sleep_replied_today",
		Help: "1 if a reply was received on the current local date, 0 otherwise",
	})
	values := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sleep_reliability",
			Help: "Reliability indicators computed on the last nights",
		},
		[]string{"indicator"})
	incidents := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sleep_incidents_30d",
			Help: "Nights under the SLO during the last 30 nights",
		},
		[]string{"severity"})
	executions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sleep_exporter_executions_total",
			Help: "Count the number of executions of the job exporting the reliability report",
		},
		[]string{"status"})
	for _, collector := range []prometheus.Collector{threshold, burn, replied, values, incidents, executions} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Exporter{
		logger:     logger,
		reporter:   reporter,
		threshold:  threshold,
		burn:       burn,
		replied:    replied,
		values:     values,
		incidents:  incidents,
		executions: executions,
		interval:   interval,
		stop:       make(chan bool),
	}, nil
}

func (e *Exporter) setOrDelete(indicator string, value *float64) {
	if value == nil {
		e.values.DeleteLabelValues(indicator)
		return
	}
	e.values.WithLabelValues(indicator).Set(*value)
}

// Export computes the report once and updates the gauges.
func (e *Exporter) Export(ctx context.Context) error {
	report, err := e.reporter.Report(ctx)
	if err != nil {
		e.executions.WithLabelValues("failure").Inc()
		return err
	}
	e.threshold.Set(float64(report.SLOMinutes))
	e.setOrDelete("availability_7d", report.Reliability7.Availability)
	e.setOrDelete("error_budget_7d", report.Reliability7.ErrorBudget)
	e.setOrDelete("average_minutes_7d", report.Averages.Minutes7)
	e.setOrDelete("average_minutes_30d", report.Averages.Minutes30)
	e.setOrDelete("p50_minutes_30d", report.Percentiles30.P50)
	e.setOrDelete("p90_minutes_30d", report.Percentiles30.P90)
	e.incidents.WithLabelValues("all").Set(float64(report.Incidents30.Incidents))
	e.incidents.WithLabelValues("sev1").Set(float64(report.Incidents30.Sev1))
	cumulative := 0
	if n := len(report.CumulativeBurnSeries); n > 0 {
		cumulative = report.CumulativeBurnSeries[n-1].CumulativeBurn
	}
	e.burn.Set(float64(cumulative))
	replied, err := e.reporter.RepliedToday(ctx)
	if err != nil {
		e.executions.WithLabelValues("failure").Inc()
		return err
	}
	if replied {
		e.replied.Set(1)
	} else {
		e.replied.Set(0)
	}
	e.executions.WithLabelValues("success").Inc()
	return nil
}

func (e *Exporter) Start() {
	e.ticker = time.NewTicker(e.interval)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-e.stop:
				return
			case <-e.ticker.C:
				e.logger.Debug("exporting reliability report")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				err := e.Export(ctx)
				cancel()
				if err != nil {
					e.logger.Error(fmt.Sprintf("fail to export reliability report: %s", err.Error()))
				}
			}
		}
	}()
}

func (e *Exporter) Stop() {
	e.ticker.Stop()
	e.stop <- true
	e.wg.Wait()
}
