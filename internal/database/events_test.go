package database_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/ingest/aggregates"
	"github.com/baidubce/bce-sdk-go/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSEvents(t *testing.T) {
	ctx := context.Background()
	okCount, err := TestComponent.CountSMSEvents(ctx, aggregates.ParseStatusOK)
	require.NoError(t, err)
	errorCount, err := TestComponent.CountSMSEvents(ctx, aggregates.ParseStatusError)
	require.NoError(t, err)

	ok := aggregates.ParseStatusOK
	minutes := 450
	date := civil.Date{Year: 2026, Month: 3, Day: 1}
	event := aggregates.SMSEvent{
		MessageSID:       util.NewUUID(),
		Direction:        aggregates.DirectionInbound,
		Body:             "7h30",
		FromNumber:       "+15555550100",
		ToNumber:         "+15555550199",
		Timestamp:        time.Now().UTC(),
		ParsedMinutes:    &minutes,
		ParseStatus:      &ok,
		RelatedSleepDate: &date,
	}
	require.NoError(t, TestComponent.InsertSMSEvent(ctx, event))

	failed := aggregates.ParseStatusError
	reason := "unrecognized format"
	rejected := aggregates.SMSEvent{
		MessageSID:  util.NewUUID(),
		Direction:   aggregates.DirectionInbound,
		Body:        "hello",
		FromNumber:  "+15555550100",
		ToNumber:    "+15555550199",
		Timestamp:   time.Now().UTC(),
		ParseStatus: &failed,
		ParseError:  &reason,
	}
	require.NoError(t, TestComponent.InsertSMSEvent(ctx, rejected))

	// the same SID is stored once
	require.NoError(t, TestComponent.InsertSMSEvent(ctx, event))

	count, err := TestComponent.CountSMSEvents(ctx, aggregates.ParseStatusOK)
	require.NoError(t, err)
	assert.Equal(t, okCount+1, count)
	count, err = TestComponent.CountSMSEvents(ctx, aggregates.ParseStatusError)
	require.NoError(t, err)
	assert.Equal(t, errorCount+1, count)
}
