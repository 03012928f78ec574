package config

import "time"

// Config holds runtime settings for the Vitrine admin CLI.
//
// Fields:
//   - LocalDBPath: path of the SQLite file backing the local document store.
//   - ServerEndpointAddr: base URL of the remote content API.
//   - SecretKey: HMAC secret for minting local session tokens.
//   - TokenValidity: lifetime of a minted session token.
//   - RemoteTimeout: per-request deadline for remote API calls.
//   - OnlineCheckInterval: how often the client probes backend reachability.
type Config struct {
	LocalDBPath         string
	ServerEndpointAddr  string
	SecretKey           string
	TokenValidity       time.Duration
	RemoteTimeout       time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "vitrine.db"
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.TokenValidity = 12 * time.Hour
	c.RemoteTimeout = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
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
