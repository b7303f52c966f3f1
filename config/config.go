package config

import (
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/appclacks/sleepslo/internal/database"
	"github.com/appclacks/sleepslo/internal/http"
	"github.com/appclacks/sleepslo/internal/validator"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type SLO struct {
	ThresholdMinutes int           `yaml:"threshold-minutes" validate:"gt=0"`
	Timezone         string        `validate:"required,timezone"`
	BurnStartDate    string        `yaml:"burn-start-date" validate:"required,datetime=2006-01-02"`
	ExportInterval   time.Duration `yaml:"export-interval" validate:"gt=0"`
}

// Location returns the timezone the nights are evaluated in.
func (s SLO) Location() (*time.Location, error) {
	location, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", s.Timezone, err)
	}
	return location, nil
}

func (s SLO) BurnStart() (civil.Date, error) {
	date, err := civil.ParseDate(s.BurnStartDate)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid burn start date %s: %w", s.BurnStartDate, err)
	}
	return date, nil
}

type Ingest struct {
	MaxMinutes int `yaml:"max-minutes" validate:"gt=0"`
}

type RateLimit struct {
	WindowSeconds int `yaml:"window-seconds" validate:"gt=0"`
	MaxRequests   int `yaml:"max-requests" validate:"gt=0"`
	MaxKeys       int `yaml:"max-keys" validate:"gte=0"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type Tracing struct {
	Endpoint string
	Insecure bool
}

type Configuration struct {
	HTTP      http.Configuration     `yaml:"http"`
	Database  database.Configuration `yaml:"database"`
	SLO       SLO                    `yaml:"slo"`
	Ingest    Ingest                 `yaml:"ingest"`
	RateLimit RateLimit              `yaml:"rate-limit"`
	Tracing   Tracing                `yaml:"tracing"`
}

// environment holds the variables overriding the configuration file.
type environment struct {
	SLOMinutes    *int    `envconfig:"SLO_MINUTES"`
	Timezone      *string `envconfig:"TIMEZONE"`
	BurnStartDate *string `envconfig:"BURN_SERIES_START_DATE"`
	AuthToken     *string `envconfig:"TWILIO_AUTH_TOKEN"`
	SMSNumber     *string `envconfig:"SMS_TO_NUMBER"`
}

func Default() Configuration {
	return Configuration{
		HTTP: http.Configuration{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: database.Configuration{
			Driver:     database.DriverPostgres,
			Port:       5432,
			SSLMode:    "disable",
			Migrations: "dev/migrations",
		},
		SLO: SLO{
			ThresholdMinutes: 420,
			Timezone:         "America/New_York",
			BurnStartDate:    "2026-02-20",
			ExportInterval:   time.Minute,
		},
		Ingest: Ingest{
			MaxMinutes: 1440,
		},
		RateLimit: RateLimit{
			WindowSeconds: 60,
			MaxRequests:   5,
			MaxKeys:       1000,
		},
	}
}

func (c *Configuration) applyEnvironment() error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("fail to read the environment: %w", err)
	}
	if env.SLOMinutes != nil {
		c.SLO.ThresholdMinutes = *env.SLOMinutes
	}
	if env.Timezone != nil {
		c.SLO.Timezone = *env.Timezone
	}
	if env.BurnStartDate != nil {
		c.SLO.BurnStartDate = *env.BurnStartDate
	}
	if env.AuthToken != nil {
		c.HTTP.SMS.AuthToken = *env.AuthToken
	}
	if env.SMSNumber != nil {
		c.HTTP.SMS.Number = *env.SMSNumber
	}
	return nil
}

// Load reads the configuration file, applies the environment overrides and
// validates the result.
func Load(path string) (Configuration, error) {
	config := Default()
	file, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("fail to read configuration file: %w", err)
	}
	if err := yaml.Unmarshal(file, &config); err != nil {
		return config, fmt.Errorf("fail to parse yaml configuration file: %w", err)
	}
	if err := config.applyEnvironment(); err != nil {
		return config, err
	}
	if err := validator.Validator.Struct(config); err != nil {
		return config, err
	}
	if _, err := config.SLO.BurnStart(); err != nil {
		return config, err
	}
	return config, nil
}
