package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/ovall/dentavia_backend/config"
)

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client        *smsir.Client
	templateID    string
	defaultRegion string
	enabled       bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	region := cfg.DefaultRegion
	if region == "" {
		region = "IR"
	}

	return &Client{
		client:        client,
		templateID:    cfg.SMSIR.TemplateID,
		defaultRegion: region,
		enabled:       true,
	}, nil
}

// SendReminder sends an appointment reminder to the given phone number using
// the configured template. If SMS is disabled, this is a no-op and returns nil.
//
// The template must have parameters named "name", "date" and "time".
func (c *Client) SendReminder(ctx context.Context, phoneNumber, name, date, timeOfDay string) error {
	if !c.enabled {
		// No-op when disabled (useful for development)
		return nil
	}

	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	if c.templateID == "" {
		return fmt.Errorf("template ID is required")
	}
	if date == "" || timeOfDay == "" {
		return fmt.Errorf("date and time are required")
	}

	normalized, err := c.NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     normalized,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "name", Value: name},
			{Key: "date", Value: date},
			{Key: "time", Value: timeOfDay},
		},
	}

	_, err = c.client.Verification.UltraFastSend(ctx, req)
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// NormalizePhone parses and reformats a recipient number to E.164, using the
// configured default region for numbers without a country prefix.
func (c *Client) NormalizePhone(raw string) (string, error) {
	region := c.defaultRegion
	if region == "" {
		region = "IR"
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
