package sleep

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/appclacks/sleepslo/pkg/sleep/aggregates"
)

// DefaultMaxMinutes is the upper bound used when Parse receives a
// non-positive maxMinutes.
const DefaultMaxMinutes = 24 * 60

const (
	ReasonEmpty        = "empty"
	ReasonInvalidClock = "invalid clock"
	ReasonInvalidToken = "invalid tokens"
	ReasonUnrecognized = "unrecognized format"
	ReasonOutOfRange   = "out of range"
)

// ParseFailure is returned when a message cannot be turned into a duration.
type ParseFailure struct {
	Reason string
}

func (p *ParseFailure) Error() string {
	return fmt.Sprintf("fail to parse sleep duration: %s", p.Reason)
}

func fail(reason string) *ParseFailure {
	return &ParseFailure{Reason: reason}
}

var (
	clockRegex  = regexp.MustCompile(`^(\d{1,2})\s*:\s*(\d{1,2})$`)
	hourRegex   = regexp.MustCompile(`(\d{1,2})\s*h`)
	minuteRegex = regexp.MustCompile(`(\d{1,2})\s*m`)
	numberRegex = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// a matcher returns claimed=false when the input is not written in its
// grammar, letting the next matcher try.
type matcher func(raw string) (minutes float64, method aggregates.Method, claimed bool, err *ParseFailure)

// matchers are tried in order, the first one claiming the input wins.
var matchers = []matcher{
	matchClock,
	matchTokens,
	matchNumber,
}

func matchClock(raw string) (float64, aggregates.Method, bool, *ParseFailure) {
	parts := clockRegex.FindStringSubmatch(raw)
	if parts == nil {
		return 0, "", false, nil
	}
	hours, _ := strconv.Atoi(parts[1])
	minutes, _ := strconv.Atoi(parts[2])
	if minutes >= 60 {
		return 0, "", true, fail(ReasonInvalidClock)
	}
	return float64(hours*60 + minutes), aggregates.MethodClock, true, nil
}

func matchTokens(raw string) (float64, aggregates.Method, bool, *ParseFailure) {
	if !strings.ContainsAny(raw, "hm") {
		return 0, "", false, nil
	}
	hourPart := hourRegex.FindStringSubmatch(raw)
	minutePart := minuteRegex.FindStringSubmatch(raw)
	if hourPart == nil && minutePart == nil {
		return 0, "", true, fail(ReasonInvalidToken)
	}
	hours, minutes := 0, 0
	if hourPart != nil {
		hours, _ = strconv.Atoi(hourPart[1])
	}
	if minutePart != nil {
		minutes, _ = strconv.Atoi(minutePart[1])
	}
	if minutes >= 60 {
		return 0, "", true, fail(ReasonInvalidToken)
	}
	return float64(hours*60 + minutes), aggregates.MethodTokens, true, nil
}

func matchNumber(raw string) (float64, aggregates.Method, bool, *ParseFailure) {
	number := strings.ReplaceAll(raw, ",", ".")
	if !numberRegex.MatchString(number) {
		return 0, "", false, nil
	}
	hours, err := strconv.ParseFloat(number, 64)
	if err != nil {
		// only reachable on overflow
		return 0, "", true, fail(ReasonOutOfRange)
	}
	method := aggregates.MethodInteger
	if strings.Contains(number, ".") {
		method = aggregates.MethodDecimal
	}
	return math.Round(hours * 60), method, true, nil
}

// Parse converts a free-text sleep duration ("7:30", "7h 30m", "7.5", "7")
// into minutes. Failures are returned as *ParseFailure.
func Parse(text string, maxMinutes int) (aggregates.DurationReport, error) {
	if maxMinutes <= 0 {
		maxMinutes = DefaultMaxMinutes
	}
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return aggregates.DurationReport{}, fail(ReasonEmpty)
	}
	for _, m := range matchers {
		minutes, method, claimed, failure := m(raw)
		if !claimed {
			continue
		}
		if failure != nil {
			return aggregates.DurationReport{}, failure
		}
		if minutes < 0 || minutes > float64(maxMinutes) {
			return aggregates.DurationReport{}, fail(ReasonOutOfRange)
		}
		result := int(minutes)
		return aggregates.DurationReport{
			Minutes:    result,
			Normalized: FormatMinutes(result),
			Method:     method,
		}, nil
	}
	return aggregates.DurationReport{}, fail(ReasonUnrecognized)
}

// FormatMinutes renders minutes as "7h 05m".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatHours renders minutes as hours with two decimals, dropping a ".00"
// suffix: 450 gives "7.50", 420 gives "7".
func FormatHours(minutes int) string {
	hours := strconv.FormatFloat(float64(minutes)/60, 'f', 2, 64)
	return strings.TrimSuffix(hours, ".00")
}
