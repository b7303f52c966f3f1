package database

import (
	"context"
	"fmt"
	"time"

	"github.com/appclacks/sleepslo/pkg/ingest/aggregates"
)

type smsEvent struct {
	MessageSID       string    `db:"message_sid"`
	Direction        string    `db:"direction"`
	Body             string    `db:"body"`
	FromNumber       string    `db:"from_number"`
	ToNumber         string    `db:"to_number"`
	Timestamp        time.Time `db:"created_at"`
	ParsedMinutes    *int      `db:"parsed_minutes"`
	ParseStatus      *string   `db:"parse_status"`
	ParseError       *string   `db:"parse_error"`
	RelatedSleepDate *string   `db:"related_sleep_date"`
}

// InsertSMSEvent stores the audit event of a message. An event with the
// same message SID is replaced.
func (c *Database) InsertSMSEvent(ctx context.Context, event aggregates.SMSEvent) error {
	data := smsEvent{
		MessageSID:    event.MessageSID,
		Direction:     string(event.Direction),
		Body:          event.Body,
		FromNumber:    event.FromNumber,
		ToNumber:      event.ToNumber,
		Timestamp:     event.Timestamp.UTC(),
		ParsedMinutes: event.ParsedMinutes,
		ParseError:    event.ParseError,
	}
	if event.ParseStatus != nil {
		status := string(*event.ParseStatus)
		data.ParseStatus = &status
	}
	if event.RelatedSleepDate != nil {
		date := event.RelatedSleepDate.String()
		data.RelatedSleepDate = &date
	}
	query := `INSERT INTO sms_event (message_sid, direction, body, from_number, to_number, created_at, parsed_minutes, parse_status, parse_error, related_sleep_date)
VALUES (:message_sid, :direction, :body, :from_number, :to_number, :created_at, :parsed_minutes, :parse_status, :parse_error, :related_sleep_date)
ON CONFLICT (message_sid) DO UPDATE SET
direction = excluded.direction,
body = excluded.body,
from_number = excluded.from_number,
to_number = excluded.to_number,
created_at = excluded.created_at,
parsed_minutes = excluded.parsed_minutes,
parse_status = excluded.parse_status,
parse_error = excluded.parse_error,
related_sleep_date = excluded.related_sleep_date`
	result, err := c.db.NamedExecContext(ctx, query, data)
	if err != nil {
		return fmt.Errorf("fail to insert SMS event %s: %w", event.MessageSID, err)
	}
	return checkResult(result, 1)
}

func (c *Database) CountSMSEvents(ctx context.Context, status aggregates.ParseStatus) (int, error) {
	var count int
	query := c.db.Rebind("SELECT count(*) FROM sms_event WHERE parse_status = ?")
	err := c.db.GetContext(ctx, &count, query, string(status))
	if err != nil {
		return 0, fmt.Errorf("fail to count SMS events: %w", err)
	}
	return count, nil
}
