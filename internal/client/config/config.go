package config

import "time"

// Config holds runtime settings for the betterimg client.
//
// Fields:
//   - StoreMode: "local" (sqlite-backed accounts) or "remote" (hosted record service).
//   - DatabaseDSN: path of the local sqlite database file.
//   - RemoteEndpointAddr: base URL of the hosted record service.
//   - SecretKey: HMAC secret for locally minted session tokens (HS256).
//     Do not use test defaults in production.
//   - SessionTokenValidity: lifetime of locally minted session tokens.
//   - ImageGenEndpointAddr / ImageGenAPIKey: image-generation service settings.
//   - AvatarTimeout: upper bound on the avatar-generation call at registration.
//   - PaymentEndpointAddr / PaymentClientID / PaymentSecret: checkout API settings.
type Config struct {
	StoreMode            string
	DatabaseDSN          string
	RemoteEndpointAddr   string
	SecretKey            string
	SessionTokenValidity time.Duration
	ImageGenEndpointAddr string
	ImageGenAPIKey       string
	AvatarTimeout        time.Duration
	PaymentEndpointAddr  string
	PaymentClientID      string
	PaymentSecret        string
}

// LoadDefaults populates c with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.StoreMode = "local"
	c.DatabaseDSN = "betterimg.db"
	c.RemoteEndpointAddr = "http://127.0.0.1:8090"
	c.SecretKey = "secretKey"
	c.SessionTokenValidity = 12 * time.Hour
	c.ImageGenEndpointAddr = "http://127.0.0.1:8100"
	c.ImageGenAPIKey = ""
	c.AvatarTimeout = 30 * time.Second
	c.PaymentEndpointAddr = "http://127.0.0.1:8200"
	c.PaymentClientID = "sandbox"
	c.PaymentSecret = "sandbox"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
