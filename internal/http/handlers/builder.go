package handlers

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/ingest"
	ingestaggregates "github.com/appclacks/sleepslo/pkg/ingest/aggregates"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
)

type IngestService interface {
	Ingest(ctx context.Context, message ingestaggregates.InboundMessage) (*ingest.Result, error)
}

type SLOService interface {
	Report(ctx context.Context) (*aggregates.ReliabilityReport, error)
	Nights(ctx context.Context, since civil.Date) ([]aggregates.NightRecord, error)
}

type Builder struct {
	ingest     IngestService
	slo        SLOService
	smsNumber  string
	maxMinutes int
}

// NewBuilder creates the handlers. smsNumber is the number the inbound
// messages must be sent to.
func NewBuilder(ingest IngestService, slo SLOService, smsNumber string, maxMinutes int) *Builder {
	return &Builder{
		ingest:     ingest,
		slo:        slo,
		smsNumber:  smsNumber,
		maxMinutes: maxMinutes,
	}
}
