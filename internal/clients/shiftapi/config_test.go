package shiftapi

import (
	"errors"
	"testing"
	"time"
)

func TestResolveConfigFromEnvValid(t *testing.T) {
	t.Setenv("SHIFT_API_URL", "http://sgq:8000/")
	t.Setenv("SHIFT_API_TIMEOUT_SECONDS", "4")
	t.Setenv("SHIFT_API_CSRF_TOKEN", " tok ")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.URL != "http://sgq:8000/" {
		t.Fatalf("URL: want=%q got=%q", "http://sgq:8000/", cfg.URL)
	}
	if cfg.Timeout != 4*time.Second {
		t.Fatalf("Timeout: want=%s got=%s", 4*time.Second, cfg.Timeout)
	}
	if cfg.CSRFToken != "tok" {
		t.Fatalf("CSRFToken: want=%q got=%q", "tok", cfg.CSRFToken)
	}
}

func TestResolveConfigFromEnvDefaultsTimeout(t *testing.T) {
	t.Setenv("SHIFT_API_URL", "http://sgq:8000")
	t.Setenv("SHIFT_API_TIMEOUT_SECONDS", "")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout: want=%s got=%s", defaultTimeout, cfg.Timeout)
	}
}

func TestResolveConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		timeout string
		want    ConfigErrorCode
	}{
		{name: "missing url", url: "", want: ConfigErrorMissingURL},
		{name: "no scheme", url: "sgq:8000", want: ConfigErrorInvalidURL},
		{name: "bad timeout", url: "http://sgq:8000", timeout: "soon", want: ConfigErrorInvalidTimeout},
		{name: "zero timeout", url: "http://sgq:8000", timeout: "0", want: ConfigErrorInvalidTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SHIFT_API_URL", tc.url)
			t.Setenv("SHIFT_API_TIMEOUT_SECONDS", tc.timeout)

			_, err := ResolveConfigFromEnv()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got=%T (%v)", err, err)
			}
			if cfgErr.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, cfgErr.Code)
			}
		})
	}
}
