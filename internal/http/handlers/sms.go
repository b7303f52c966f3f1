package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/appclacks/sleepslo/pkg/ingest"
	"github.com/appclacks/sleepslo/pkg/ingest/aggregates"
	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

type InboundSMS struct {
	MessageSID string `form:"MessageSid"`
	From       string `form:"From" validate:"required"`
	To         string `form:"To" validate:"required"`
	Body       string `form:"Body"`
}

// TwiML is the reply returned to the SMS provider.
type TwiML struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (b *Builder) InboundSMS(ec echo.Context) error {
	var payload InboundSMS
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if payload.To != b.smsNumber {
		return er.Newf("messages sent to %s are not accepted", er.Forbidden, true, payload.To)
	}
	if err := ec.Validate(payload); err != nil {
		return err
	}
	result, err := b.ingest.Ingest(ec.Request().Context(), aggregates.InboundMessage{
		MessageSID: payload.MessageSID,
		From:       payload.From,
		To:         payload.To,
		Body:       payload.Body,
	})
	if err != nil {
		return err
	}
	if result.Status == ingest.StatusRateLimited {
		ec.Response().Header().Set("Retry-After", fmt.Sprintf("%d", result.RetryAfter))
	}
	return ec.XML(http.StatusOK, TwiML{Message: result.Reply()})
}
