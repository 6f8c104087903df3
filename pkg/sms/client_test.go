package sms

import (
	"context"
	"testing"

	"github.com/ovall/dentavia_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: false,
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "",
			SecretKey:  "",
			TemplateID: "test-template",
		},
	}

	_, err := NewFromConfig(cfg)
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			TemplateID: "test-template",
		},
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestSendReminder_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	err := client.SendReminder(context.Background(), "+989121234567", "Sara", "2026-09-14", "08:30")
	if err != nil {
		t.Errorf("Expected no error for disabled client, got: %v", err)
	}
}

func TestSendReminder_Validation(t *testing.T) {
	client := &Client{enabled: true, templateID: "template-id", defaultRegion: "IR"}

	tests := []struct {
		name        string
		phone       string
		date        string
		time        string
		expectError bool
	}{
		{
			name:        "empty phone number",
			phone:       "",
			date:        "2026-09-14",
			time:        "08:30",
			expectError: true,
		},
		{
			name:        "empty date",
			phone:       "+989121234567",
			date:        "",
			time:        "08:30",
			expectError: true,
		},
		{
			name:        "empty time",
			phone:       "+989121234567",
			date:        "2026-09-14",
			time:        "",
			expectError: true,
		},
		{
			name:        "unparseable phone number",
			phone:       "not-a-number",
			date:        "2026-09-14",
			time:        "08:30",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.SendReminder(context.Background(), tt.phone, "Sara", tt.date, tt.time)
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	client := &Client{enabled: true, defaultRegion: "IR"}

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "+989121234567", want: "+989121234567"},
		{raw: "09121234567", want: "+989121234567"},
		{raw: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		got, err := client.NormalizePhone(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizePhone(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizePhone(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{name: "enabled", enabled: true},
		{name: "disabled", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{enabled: tt.enabled}
			if client.IsEnabled() != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", client.IsEnabled(), tt.enabled)
			}
		})
	}
}
