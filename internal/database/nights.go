package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/pkg/slo/aggregates"
)

type nightRecord struct {
	SleepDate         string    `db:"sleep_date"`
	MinutesSlept      int       `db:"minutes_slept"`
	RawReply          string    `db:"raw_reply"`
	ReceivedAt        time.Time `db:"received_at"`
	ReceivedLocalDate string    `db:"received_local_date"`
	FromNumber        string    `db:"from_number"`
	MessageSID        string    `db:"message_sid"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func toNightRecord(record nightRecord) (aggregates.NightRecord, error) {
	date, err := civil.ParseDate(record.SleepDate)
	if err != nil {
		return aggregates.NightRecord{}, fmt.Errorf("invalid sleep date %s in database: %w", record.SleepDate, err)
	}
	localDate, err := civil.ParseDate(record.ReceivedLocalDate)
	if err != nil {
		return aggregates.NightRecord{}, fmt.Errorf("invalid received local date %s in database: %w", record.ReceivedLocalDate, err)
	}
	return aggregates.NightRecord{
		Date:              date,
		MinutesSlept:      record.MinutesSlept,
		RawReply:          record.RawReply,
		ReceivedAt:        record.ReceivedAt.UTC(),
		ReceivedLocalDate: localDate,
		FromNumber:        record.FromNumber,
		MessageSID:        record.MessageSID,
		UpdatedAt:         record.UpdatedAt.UTC(),
	}, nil
}

// UpsertNight stores the record, replacing any record already stored for
// the same night.
func (c *Database) UpsertNight(ctx context.Context, record aggregates.NightRecord) error {
	data := nightRecord{
		SleepDate:         record.Date.String(),
		MinutesSlept:      record.MinutesSlept,
		RawReply:          record.RawReply,
		ReceivedAt:        record.ReceivedAt.UTC(),
		ReceivedLocalDate: record.ReceivedLocalDate.String(),
		FromNumber:        record.FromNumber,
		MessageSID:        record.MessageSID,
		UpdatedAt:         record.UpdatedAt.UTC(),
	}
	query := `INSERT INTO night_record (sleep_date, minutes_slept, raw_reply, received_at, received_local_date, from_number, message_sid, updated_at)
VALUES (:sleep_date, :minutes_slept, :raw_reply, :received_at, :received_local_date, :from_number, :message_sid, :updated_at)
ON CONFLICT (sleep_date) DO UPDATE SET
minutes_slept = excluded.minutes_slept,
raw_reply = excluded.raw_reply,
received_at = excluded.received_at,
received_local_date = excluded.received_local_date,
from_number = excluded.from_number,
message_sid = excluded.message_sid,
updated_at = excluded.updated_at`
	result, err := c.db.NamedExecContext(ctx, query, data)
	if err != nil {
		return fmt.Errorf("fail to upsert night %s: %w", data.SleepDate, err)
	}
	return checkResult(result, 1)
}

// ListNightsSince returns the records from since (inclusive), ordered by
// date.
func (c *Database) ListNightsSince(ctx context.Context, since civil.Date) ([]aggregates.NightRecord, error) {
	records := []nightRecord{}
	query := c.db.Rebind("SELECT sleep_date, minutes_slept, raw_reply, received_at, received_local_date, from_number, message_sid, updated_at FROM night_record WHERE sleep_date >= ? ORDER BY sleep_date")
	err := c.db.SelectContext(ctx, &records, query, since.String())
	if err != nil {
		return nil, fmt.Errorf("fail to list nights since %s: %w", since, err)
	}
	result := make([]aggregates.NightRecord, 0, len(records))
	for _, record := range records {
		night, err := toNightRecord(record)
		if err != nil {
			return nil, err
		}
		result = append(result, night)
	}
	return result, nil
}

// HasReplyOnLocalDate reports whether a reply was received on the given
// local date.
func (c *Database) HasReplyOnLocalDate(ctx context.Context, date civil.Date) (bool, error) {
	var count int
	query := c.db.Rebind("SELECT count(*) FROM night_record WHERE received_local_date = ?")
	err := c.db.GetContext(ctx, &count, query, date.String())
	if err != nil {
		return false, fmt.Errorf("fail to check replies for %s: %w", date, err)
	}
	return count > 0, nil
}
