package config

import (
	"testing"
	"time"
)

const testYAML = `
app:
  name: "authgate"
  debug: true
  server:
    cors:
      - "http://a.local"
      - "http://b.local"
jwt:
  session_ttl_days: 7
  pending_ttl_minutes: 10
  audiences: "one, two"
modules:
  auth:
    login_otp_ttl_seconds: 60
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	t.Run("Scalars", func(t *testing.T) {
		if got := cfg.GetString("app.name"); got != "authgate" {
			t.Fatalf("expected authgate, got %q", got)
		}
		if !cfg.GetBool("app.debug") {
			t.Fatalf("expected debug true")
		}
		if got := cfg.GetInt("jwt.session_ttl_days"); got != 7 {
			t.Fatalf("expected 7, got %d", got)
		}
	})

	t.Run("Durations", func(t *testing.T) {
		if got := cfg.GetSecond("modules.auth.login_otp_ttl_seconds"); got != time.Minute {
			t.Fatalf("expected 60s, got %v", got)
		}
		if got := cfg.GetMinute("jwt.pending_ttl_minutes"); got != 10*time.Minute {
			t.Fatalf("expected 10m, got %v", got)
		}
		if got := cfg.GetDay("jwt.session_ttl_days"); got != 7*24*time.Hour {
			t.Fatalf("expected 168h, got %v", got)
		}
	})

	t.Run("Arrays", func(t *testing.T) {
		// Arrange: native yaml list
		list := cfg.GetArray("app.server.cors")
		if len(list) != 2 || list[0] != "http://a.local" || list[1] != "http://b.local" {
			t.Fatalf("unexpected list: %v", list)
		}

		// Act: comma-separated string
		csv := cfg.GetArray("jwt.audiences")

		// Assert
		if len(csv) != 2 || csv[0] != "one" || csv[1] != "two" {
			t.Fatalf("unexpected csv array: %v", csv)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		if got := cfg.GetString("does.not.exist"); got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
		if got := cfg.GetArray("does.not.exist"); len(got) != 0 {
			t.Fatalf("expected empty array, got %v", got)
		}
	})
}

func TestViperFromBytesBadInput(t *testing.T) {
	// Arrange & Act
	_, errType := NewViperFromBytes("", []byte("a: 1"))
	_, errBody := NewViperFromBytes("yaml", []byte("a: [1,"))

	// Assert
	if errType == nil {
		t.Fatalf("expected error for missing config type")
	}
	if errBody == nil {
		t.Fatalf("expected error for malformed body")
	}
}
