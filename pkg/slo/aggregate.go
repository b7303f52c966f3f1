package slo

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
)

const (
	LongWindowNights  = 30
	ShortWindowNights = 7
)

// DateRange returns every date from start to end, both included. It is empty
// when start is after end.
func DateRange(start civil.Date, end civil.Date) []civil.Date {
	if start.After(end) {
		return nil
	}
	result := []civil.Date{}
	for current := start; !current.After(end); current = current.AddDays(1) {
		result = append(result, current)
	}
	return result
}

// Average returns nil for an empty slice.
func Average(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	result := float64(sum) / float64(len(values))
	return &result
}

// Percentile interpolates linearly between the two order statistics around
// (n-1)*p. sortedAsc must be sorted. It returns nil for an empty slice.
func Percentile(sortedAsc []int, p float64) *float64 {
	if len(sortedAsc) == 0 {
		return nil
	}
	var result float64
	switch {
	case p <= 0:
		result = float64(sortedAsc[0])
	case p >= 1:
		result = float64(sortedAsc[len(sortedAsc)-1])
	default:
		index := float64(len(sortedAsc)-1) * p
		lo := int(math.Floor(index))
		hi := int(math.Ceil(index))
		if lo == hi {
			result = float64(sortedAsc[lo])
		} else {
			weight := index - float64(lo)
			result = float64(sortedAsc[lo])*(1-weight) + float64(sortedAsc[hi])*weight
		}
	}
	return &result
}

// BurnSeries accumulates one burn per recorded night under the SLO between
// start and end. Nights without a record never burn.
func BurnSeries(byDate map[civil.Date]int, sloMinutes int, start civil.Date, end civil.Date) []aggregates.BurnPoint {
	result := []aggregates.BurnPoint{}
	cumulative := 0
	for _, date := range DateRange(start, end) {
		burn := 0
		if minutes, ok := byDate[date]; ok && minutes < sloMinutes {
			burn = 1
		}
		cumulative += burn
		result = append(result, aggregates.BurnPoint{
			Date:           date,
			Burn:           burn,
			CumulativeBurn: cumulative,
		})
	}
	return result
}

// Aggregate computes the reliability report ending at endDate. When several
// records share a date the last one wins.
func Aggregate(records []aggregates.NightRecord, sloMinutes int, endDate civil.Date, burnStartDate civil.Date) aggregates.ReliabilityReport {
	byDate := make(map[civil.Date]int, len(records))
	for _, record := range records {
		byDate[record.Date] = record.MinutesSlept
	}

	start30 := endDate.AddDays(-(LongWindowNights - 1))
	start7 := endDate.AddDays(-(ShortWindowNights - 1))

	minutes30 := []int{}
	minutes7 := []int{}
	history := []aggregates.NightHistory{}
	incidents := aggregates.Incidents{}
	known7 := 0
	ok7 := 0

	for _, date := range DateRange(start30, endDate) {
		var minutes *int
		if m, ok := byDate[date]; ok {
			minutes = &m
		}
		status := Classify(minutes, sloMinutes)
		history = append(history, aggregates.NightHistory{
			Date:         date,
			Status:       status,
			MinutesSlept: minutes,
		})
		if status == aggregates.StatusUnknown {
			continue
		}
		inShortWindow := !date.Before(start7)
		minutes30 = append(minutes30, *minutes)
		if inShortWindow {
			minutes7 = append(minutes7, *minutes)
			known7++
			if status == aggregates.StatusOK {
				ok7++
			}
		}
		if status != aggregates.StatusOK {
			incidents.Incidents++
		}
		if status == aggregates.StatusSev1 {
			incidents.Sev1++
		}
	}

	sort.Ints(minutes30)

	reliability := aggregates.Reliability{KnownNights: known7}
	if known7 > 0 {
		availability := float64(ok7) / float64(known7)
		errorBudget := 1 - availability
		reliability.Availability = &availability
		reliability.ErrorBudget = &errorBudget
	}

	return aggregates.ReliabilityReport{
		SLOMinutes: sloMinutes,
		EndDate:    endDate,
		Averages: aggregates.Averages{
			Minutes7:  Average(minutes7),
			Minutes30: Average(minutes30),
		},
		Percentiles30: aggregates.Percentiles{
			P50: Percentile(minutes30, 0.5),
			P90: Percentile(minutes30, 0.9),
		},
		Incidents30:          incidents,
		Reliability7:         reliability,
		StatusHistory30:      history,
		CumulativeBurnSeries: BurnSeries(byDate, sloMinutes, burnStartDate, endDate),
	}
}
