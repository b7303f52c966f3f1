package handlers

import (
	"errors"
	"net/http"

	"github.com/appclacks/sleepslo/pkg/sleep"
	"github.com/appclacks/sleepslo/pkg/sleep/aggregates"
	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

type ParseInput struct {
	Text       string `json:"text"`
	MaxMinutes int    `json:"max-minutes" validate:"gte=0"`
}

type ParseOutput struct {
	Minutes    int               `json:"minutes"`
	Hours      string            `json:"hours"`
	Normalized string            `json:"normalized"`
	Method     aggregates.Method `json:"method"`
}

func (b *Builder) Parse(ec echo.Context) error {
	var payload ParseInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := ec.Validate(payload); err != nil {
		return err
	}
	maxMinutes := payload.MaxMinutes
	if maxMinutes == 0 {
		maxMinutes = b.maxMinutes
	}
	report, err := sleep.Parse(payload.Text, maxMinutes)
	if err != nil {
		var failure *sleep.ParseFailure
		if errors.As(err, &failure) {
			return er.New(failure.Reason, er.BadRequest, true)
		}
		return err
	}
	return ec.JSON(http.StatusOK, ParseOutput{
		Minutes:    report.Minutes,
		Hours:      sleep.FormatHours(report.Minutes),
		Normalized: report.Normalized,
		Method:     report.Method,
	})
}
