package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Fatalf("expected default port 5000, got %s", cfg.Server.Port)
	}
	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development environment, got %s", cfg.Environment)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected IsDevelopment to be true")
	}
	if cfg.Idempotency.Header != "Idempotency-Key" {
		t.Fatalf("unexpected idempotency header %s", cfg.Idempotency.Header)
	}
	if cfg.Idempotency.TTL != 24*time.Hour {
		t.Fatalf("unexpected idempotency ttl %s", cfg.Idempotency.TTL)
	}
}

func TestLoadReadsEnvMap(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PORT":                      "8080",
		"ENVIRONMENT":               "production",
		"FIRESTORE_PROJECT_ID":      "peachwood-prod",
		"CORS_ALLOWED_ORIGINS":      "https://peachwood.example, https://www.peachwood.example",
		"PUBSUB_ORDER_EVENTS_TOPIC": "order-events",
		"SERVER_READ_TIMEOUT":       "5s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.IsDevelopment() {
		t.Fatal("expected production mode")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://www.peachwood.example" {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Events.ProjectID != "peachwood-prod" {
		t.Fatalf("expected events project to default to firestore project, got %s", cfg.Events.ProjectID)
	}
	if cfg.Events.Topic != "order-events" {
		t.Fatalf("unexpected topic %s", cfg.Events.Topic)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "bad port",
			env:   map[string]string{"PORT": "not-a-number"},
			field: "Server.Port",
		},
		{
			name:  "unknown environment",
			env:   map[string]string{"ENVIRONMENT": "staging"},
			field: "Environment",
		},
		{
			name:  "production without origins",
			env:   map[string]string{"ENVIRONMENT": "production"},
			field: "CORS.AllowedOrigins",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(tc.env))
			var invalid *ValidationError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, field := range invalid.Fields() {
				if field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected field %s in %v", tc.field, invalid.Fields())
			}
		})
	}
}
