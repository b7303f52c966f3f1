package aggregates

import (
	"time"

	"cloud.google.com/go/civil"
)

type NightStatus string

const (
	StatusOK       NightStatus = "OK"
	StatusDegraded NightStatus = "DEGRADED"
	StatusMajor    NightStatus = "MAJOR"
	StatusSev1     NightStatus = "SEV1"
	StatusUnknown  NightStatus = "UNKNOWN"
)

// NightRecord is the stored outcome of one night. Date is unique.
type NightRecord struct {
	Date              civil.Date
	MinutesSlept      int
	RawReply          string
	ReceivedAt        time.Time
	ReceivedLocalDate civil.Date
	FromNumber        string
	MessageSID        string
	UpdatedAt         time.Time
}

type NightHistory struct {
	Date         civil.Date
	Status       NightStatus
	MinutesSlept *int
}

type BurnPoint struct {
	Date           civil.Date
	Burn           int
	CumulativeBurn int
}

type Averages struct {
	Minutes7  *float64
	Minutes30 *float64
}

type Percentiles struct {
	P50 *float64
	P90 *float64
}

type Incidents struct {
	Incidents int
	Sev1      int
}

type Reliability struct {
	Availability *float64
	ErrorBudget  *float64
	KnownNights  int
}

type ReliabilityReport struct {
	GeneratedAt          time.Time
	Timezone             string
	SLOMinutes           int
	EndDate              civil.Date
	Averages             Averages
	Percentiles30        Percentiles
	Incidents30          Incidents
	Reliability7         Reliability
	StatusHistory30      []NightHistory
	CumulativeBurnSeries []BurnPoint
}
