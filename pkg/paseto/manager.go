package pasetotoken

import (
	"time"

	"github.com/ovall/dentavia_backend/config"
)

// NewPasetoManager creates a new PASETO manager from config.
// Returns an error if the configuration is invalid.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	mgr, err := New(Config{
		Mode:       Mode(p.Mode),
		Issuer:     p.Issuer,
		Audience:   p.Audience,
		AccessTTL:  time.Duration(p.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(p.RefreshTTLDays) * 24 * time.Hour,
		Implicit:   nil,
	}, keys)
	if err != nil {
		return nil, err
	}

	return mgr, nil
}
