package aggregates

import (
	"time"

	"cloud.google.com/go/civil"
)

type InboundMessage struct {
	MessageSID string
	From       string
	To         string
	Body       string
	ReceivedAt time.Time
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type ParseStatus string

const (
	ParseStatusOK    ParseStatus = "ok"
	ParseStatusError ParseStatus = "error"
)

// SMSEvent is the audit trail of a message, stored whether it was
// understood or not.
type SMSEvent struct {
	MessageSID       string
	Direction        Direction
	Body             string
	FromNumber       string
	ToNumber         string
	Timestamp        time.Time
	ParsedMinutes    *int
	ParseStatus      *ParseStatus
	ParseError       *string
	RelatedSleepDate *civil.Date
}
