package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/ingest/aggregates"
	"github.com/appclacks/sleepslo/pkg/sleep"
	sleepaggregates "github.com/appclacks/sleepslo/pkg/sleep/aggregates"
	sloaggregates "github.com/appclacks/sleepslo/pkg/slo/aggregates"
	"github.com/google/uuid"
)

type Status string

const (
	StatusLogged      Status = "logged"
	StatusRejected    Status = "rejected"
	StatusRateLimited Status = "rate_limited"
)

type Result struct {
	Status     Status
	Report     *sleepaggregates.DurationReport
	SleepDate  civil.Date
	Reason     string
	RetryAfter int
}

// Reply is the text sent back to the sender.
func (r *Result) Reply() string {
	switch r.Status {
	case StatusLogged:
		return fmt.Sprintf("Logged %sh for %s.", sleep.FormatHours(r.Report.Minutes), r.SleepDate)
	case StatusRateLimited:
		return fmt.Sprintf("Too many messages, try again in %ds.", r.RetryAfter)
	default:
		return fmt.Sprintf("Could not parse. Reply like 7.5, 7h 30m, or 7:30. (%s)", r.Reason)
	}
}

var senderReplacer = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// NormalizeSender strips the formatting characters from a phone number so
// that "+1 (555) 555-0100" and "+15555550100" share a rate limit.
func NormalizeSender(from string) string {
	return senderReplacer.Replace(strings.TrimSpace(from))
}

func (s *Service) Ingest(ctx context.Context, message aggregates.InboundMessage) (*Result, error) {
	sender := NormalizeSender(message.From)
	decision := s.limiter.Check(sender)
	if !decision.Allowed {
		s.logger.Info(fmt.Sprintf("message from %s rate limited, retry in %ds", sender, decision.RetryAfter))
		s.messages.WithLabelValues(string(StatusRateLimited)).Inc()
		return &Result{
			Status:     StatusRateLimited,
			RetryAfter: decision.RetryAfter,
		}, nil
	}

	if message.ReceivedAt.IsZero() {
		message.ReceivedAt = s.clock()
	}
	if message.MessageSID == "" {
		message.MessageSID = uuid.NewString()
	}
	receivedAt := message.ReceivedAt.UTC()
	receivedLocalDate := civil.DateOf(message.ReceivedAt.In(s.config.Location))
	sleepDate := receivedLocalDate.AddDays(-1)

	event := aggregates.SMSEvent{
		MessageSID: message.MessageSID,
		Direction:  aggregates.DirectionInbound,
		Body:       message.Body,
		FromNumber: message.From,
		ToNumber:   message.To,
		Timestamp:  receivedAt,
	}

	report, err := sleep.Parse(message.Body, s.config.MaxMinutes)
	if err != nil {
		var failure *sleep.ParseFailure
		if !errors.As(err, &failure) {
			return nil, err
		}
		s.logger.Info(fmt.Sprintf("fail to parse message %s from %s: %s", message.MessageSID, sender, failure.Reason))
		status := aggregates.ParseStatusError
		event.ParseStatus = &status
		event.ParseError = &failure.Reason
		if err := s.store.InsertSMSEvent(ctx, event); err != nil {
			return nil, err
		}
		s.messages.WithLabelValues(string(StatusRejected)).Inc()
		return &Result{
			Status: StatusRejected,
			Reason: failure.Reason,
		}, nil
	}

	record := sloaggregates.NightRecord{
		Date:              sleepDate,
		MinutesSlept:      report.Minutes,
		RawReply:          message.Body,
		ReceivedAt:        receivedAt,
		ReceivedLocalDate: receivedLocalDate,
		FromNumber:        message.From,
		MessageSID:        message.MessageSID,
		UpdatedAt:         receivedAt,
	}
	if err := s.store.UpsertNight(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info(fmt.Sprintf("logged %s (%s) for night %s", report.Normalized, report.Method, sleepDate))

	status := aggregates.ParseStatusOK
	event.ParseStatus = &status
	event.ParsedMinutes = &report.Minutes
	event.RelatedSleepDate = &sleepDate
	if err := s.store.InsertSMSEvent(ctx, event); err != nil {
		return nil, err
	}
	s.messages.WithLabelValues(string(StatusLogged)).Inc()
	return &Result{
		Status:    StatusLogged,
		Report:    &report,
		SleepDate: sleepDate,
	}, nil
}
