package source

import "errors"

// Config holds configuration for the Cobalto rooms API.
type Config struct {
	// URL is the full endpoint returning the compartimento grid.
	URL string `mapstructure:"url" default:""`
	// Timeout is the request timeout in seconds.
	Timeout int `mapstructure:"timeout" default:"30"`
	// SessionID is the optional PHPSESSID cookie value.
	SessionID string `mapstructure:"phpsessid" default:""`
}

// Validate checks that the source can be called.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("cobalto url is required (COBALTO_URL)")
	}
	if c.Timeout <= 0 {
		return errors.New("cobalto timeout must be positive (COBALTO_TIMEOUT)")
	}
	return nil
}
