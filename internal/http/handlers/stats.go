package handlers

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

type NightHistory struct {
	SleepDate    civil.Date             `json:"sleepDate"`
	Status       aggregates.NightStatus `json:"status"`
	MinutesSlept *int                   `json:"minutesSlept"`
}

type BurnPoint struct {
	SleepDate      civil.Date `json:"sleepDate"`
	Burn           int        `json:"burn"`
	CumulativeBurn int        `json:"cumulativeBurn"`
}

type Averages struct {
	AvgMinutes7  *float64 `json:"avgMinutes7"`
	AvgMinutes30 *float64 `json:"avgMinutes30"`
}

type Percentiles struct {
	P50Minutes *float64 `json:"p50Minutes"`
	P90Minutes *float64 `json:"p90Minutes"`
}

type Incidents struct {
	Incidents int `json:"incidents"`
	Sev1      int `json:"sev1"`
}

type Reliability struct {
	Availability *float64 `json:"availability"`
	ErrorBudget  *float64 `json:"errorBudget"`
	KnownNights  int      `json:"knownNights"`
}

type Stats struct {
	GeneratedAtUTC       time.Time      `json:"generatedAtUtc"`
	Timezone             string         `json:"timezone"`
	SLOMinutes           int            `json:"sloMinutes"`
	EndSleepDate         civil.Date     `json:"endSleepDate"`
	Averages             Averages       `json:"averages"`
	Percentiles30        Percentiles    `json:"percentiles30"`
	Incidents30          Incidents      `json:"incidents30"`
	Reliability7         Reliability    `json:"reliability7"`
	StatusHistory30      []NightHistory `json:"statusHistory30"`
	CumulativeBurnSeries []BurnPoint    `json:"cumulativeBurnSeries"`
}

func toStats(report aggregates.ReliabilityReport) Stats {
	result := Stats{
		GeneratedAtUTC: report.GeneratedAt,
		Timezone:       report.Timezone,
		SLOMinutes:     report.SLOMinutes,
		EndSleepDate:   report.EndDate,
		Averages: Averages{
			AvgMinutes7:  report.Averages.Minutes7,
			AvgMinutes30: report.Averages.Minutes30,
		},
		Percentiles30: Percentiles{
			P50Minutes: report.Percentiles30.P50,
			P90Minutes: report.Percentiles30.P90,
		},
		Incidents30: Incidents{
			Incidents: report.Incidents30.Incidents,
			Sev1:      report.Incidents30.Sev1,
		},
		Reliability7: Reliability{
			Availability: report.Reliability7.Availability,
			ErrorBudget:  report.Reliability7.ErrorBudget,
			KnownNights:  report.Reliability7.KnownNights,
		},
		StatusHistory30:      []NightHistory{},
		CumulativeBurnSeries: []BurnPoint{},
	}
	for _, night := range report.StatusHistory30 {
		result.StatusHistory30 = append(result.StatusHistory30, NightHistory{
			SleepDate:    night.Date,
			Status:       night.Status,
			MinutesSlept: night.MinutesSlept,
		})
	}
	for _, point := range report.CumulativeBurnSeries {
		result.CumulativeBurnSeries = append(result.CumulativeBurnSeries, BurnPoint{
			SleepDate:      point.Date,
			Burn:           point.Burn,
			CumulativeBurn: point.CumulativeBurn,
		})
	}
	return result
}

func (b *Builder) Stats(ec echo.Context) error {
	report, err := b.slo.Report(ec.Request().Context())
	if err != nil {
		return err
	}
	return ec.JSON(http.StatusOK, toStats(*report))
}

type ListNightsInput struct {
	Since string `query:"since" validate:"required,datetime=2006-01-02"`
}

type Night struct {
	SleepDate         civil.Date `json:"sleepDate"`
	MinutesSlept      int        `json:"minutesSlept"`
	RawReply          string     `json:"rawReply"`
	ReceivedAtUTC     time.Time  `json:"receivedAtUtc"`
	ReceivedLocalDate civil.Date `json:"receivedAtLocalDate"`
	FromNumber        string     `json:"fromNumber"`
	MessageSID        string     `json:"messageSid"`
	UpdatedAtUTC      time.Time  `json:"updatedAtUtc"`
}

type ListNightsOutput struct {
	Result []Night `json:"result"`
}

func (b *Builder) ListNights(ec echo.Context) error {
	var payload ListNightsInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := ec.Validate(payload); err != nil {
		return err
	}
	since, err := civil.ParseDate(payload.Since)
	if err != nil || !since.IsValid() {
		return er.Newf("invalid date %s", er.BadRequest, true, payload.Since)
	}
	records, err := b.slo.Nights(ec.Request().Context(), since)
	if err != nil {
		return err
	}
	result := ListNightsOutput{Result: []Night{}}
	for _, record := range records {
		result.Result = append(result.Result, Night{
			SleepDate:         record.Date,
			MinutesSlept:      record.MinutesSlept,
			RawReply:          record.RawReply,
			ReceivedAtUTC:     record.ReceivedAt,
			ReceivedLocalDate: record.ReceivedLocalDate,
			FromNumber:        record.FromNumber,
			MessageSID:        record.MessageSID,
			UpdatedAtUTC:      record.UpdatedAt,
		})
	}
	return ec.JSON(http.StatusOK, result)
}
