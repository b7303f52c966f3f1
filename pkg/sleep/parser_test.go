package sleep_test

import (
	"errors"
	"testing"

	"github.com/appclacks/sleepslo/pkg/sleep"
	"github.com/appclacks/sleepslo/pkg/sleep/aggregates"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input      string
		maxMinutes int
		minutes    int
		method     aggregates.Method
		normalized string
	}{
		{input: "7:30", minutes: 450, method: aggregates.MethodClock, normalized: "7h 30m"},
		{input: "7:5", minutes: 425, method: aggregates.MethodClock, normalized: "7h 05m"},
		{input: " 07 : 45 ", minutes: 465, method: aggregates.MethodClock, normalized: "7h 45m"},
		{input: "7h 30m", minutes: 450, method: aggregates.MethodTokens, normalized: "7h 30m"},
		{input: "7H30M", minutes: 450, method: aggregates.MethodTokens, normalized: "7h 30m"},
		{input: "7h", minutes: 420, method: aggregates.MethodTokens, normalized: "7h 00m"},
		{input: "45m", minutes: 45, method: aggregates.MethodTokens, normalized: "0h 45m"},
		{input: "6 hours 15 min", minutes: 375, method: aggregates.MethodTokens, normalized: "6h 15m"},
		{input: "7.5", minutes: 450, method: aggregates.MethodDecimal, normalized: "7h 30m"},
		{input: "7,5", minutes: 450, method: aggregates.MethodDecimal, normalized: "7h 30m"},
		{input: "6.25", minutes: 375, method: aggregates.MethodDecimal, normalized: "6h 15m"},
		{input: "7", minutes: 420, method: aggregates.MethodInteger, normalized: "7h 00m"},
		{input: "0", minutes: 0, method: aggregates.MethodInteger, normalized: "0h 00m"},
		{input: "24", minutes: 1440, method: aggregates.MethodInteger, normalized: "24h 00m"},
		{input: "16", maxMinutes: 960, minutes: 960, method: aggregates.MethodInteger, normalized: "16h 00m"},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			report, err := sleep.Parse(c.input, c.maxMinutes)
			assert.NoError(t, err)
			assert.Equal(t, c.minutes, report.Minutes)
			assert.Equal(t, c.method, report.Method)
			assert.Equal(t, c.normalized, report.Normalized)
		})
	}
}

func TestParseFailures(t *testing.T) {
	cases := []struct {
		input      string
		maxMinutes int
		reason     string
	}{
		{input: "", reason: sleep.ReasonEmpty},
		{input: "   \t", reason: sleep.ReasonEmpty},
		{input: "7:99", reason: sleep.ReasonInvalidClock},
		{input: "7:60", reason: sleep.ReasonInvalidClock},
		{input: "7h 75m", reason: sleep.ReasonInvalidToken},
		{input: "hmm", reason: sleep.ReasonInvalidToken},
		{input: "banana", reason: sleep.ReasonUnrecognized},
		{input: "-7", reason: sleep.ReasonUnrecognized},
		{input: "7.5.5", reason: sleep.ReasonUnrecognized},
		{input: "25", reason: sleep.ReasonOutOfRange},
		{input: "25", maxMinutes: 960, reason: sleep.ReasonOutOfRange},
		{input: "16:01", maxMinutes: 960, reason: sleep.ReasonOutOfRange},
		{input: "99999999999999999999999", reason: sleep.ReasonOutOfRange},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			_, err := sleep.Parse(c.input, c.maxMinutes)
			assert.Error(t, err)
			var failure *sleep.ParseFailure
			assert.True(t, errors.As(err, &failure))
			assert.Equal(t, c.reason, failure.Reason)
		})
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	lower, err := sleep.Parse("7h 30m", 0)
	assert.NoError(t, err)
	upper, err := sleep.Parse("  7H 30M  ", 0)
	assert.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "7", sleep.FormatHours(420))
	assert.Equal(t, "7.50", sleep.FormatHours(450))
	assert.Equal(t, "6.25", sleep.FormatHours(375))
	assert.Equal(t, "0.67", sleep.FormatHours(40))
}
