package shiftapi

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	URL       string
	Timeout   time.Duration
	CSRFToken string
}

type ConfigErrorCode string

const (
	ConfigErrorMissingURL     ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL     ConfigErrorCode = "invalid_url"
	ConfigErrorInvalidTimeout ConfigErrorCode = "invalid_timeout"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid shift api config"
	}
	switch e.Code {
	case ConfigErrorMissingURL:
		return "SHIFT_API_URL is required"
	case ConfigErrorInvalidURL:
		return fmt.Sprintf(
			"invalid SHIFT_API_URL=%q; expected absolute URL like http://sgq:8000",
			e.Value,
		)
	case ConfigErrorInvalidTimeout:
		return fmt.Sprintf(
			"invalid SHIFT_API_TIMEOUT_SECONDS=%q; expected positive integer",
			e.Value,
		)
	default:
		return "invalid shift api config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		URL:       strings.TrimSpace(os.Getenv("SHIFT_API_URL")),
		Timeout:   defaultTimeout,
		CSRFToken: strings.TrimSpace(os.Getenv("SHIFT_API_CSRF_TOKEN")),
	}
	if raw := strings.TrimSpace(os.Getenv("SHIFT_API_TIMEOUT_SECONDS")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, &ConfigError{
				Code:  ConfigErrorInvalidTimeout,
				Value: raw,
				Cause: err,
			}
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if cfg.URL == "" {
		return &ConfigError{Code: ConfigErrorMissingURL}
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return &ConfigError{
			Code:  ConfigErrorInvalidURL,
			Value: cfg.URL,
			Cause: err,
		}
	}
	if cfg.Timeout < 0 {
		return &ConfigError{
			Code:  ConfigErrorInvalidTimeout,
			Value: cfg.Timeout.String(),
		}
	}
	return nil
}
