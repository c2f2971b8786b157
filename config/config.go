// Package config loads notekeep settings from the environment.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	StoreDriverDynamo = "dynamodb"
	StoreDriverMemory = "memory"
)

type Config struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTSecretBase64   bool          `koanf:"jwt_secret_base64"`
	StoreURI          string        `koanf:"store_uri"`
	RedisEndpoint     string        `koanf:"redis_endpoint"`
	DevMode           bool          `koanf:"dev_mode"`
	HostPort          string        `koanf:"host_port"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	AuthRatePerSecond float64       `koanf:"auth_rate_per_second"`
	AuthRateBurst     int           `koanf:"auth_rate_burst"`
	LogLevel          string        `koanf:"log_level"`
	// Comma-separated IPs or CIDRs of proxies allowed to set X-Forwarded-For
	TrustedProxiesRaw string `koanf:"trusted_proxies"`

	Store          StoreConfig    `koanf:"-"`
	TrustedProxies []netip.Prefix `koanf:"-"`
}

// StoreConfig is the parsed form of STORE_URI.
type StoreConfig struct {
	Driver   string
	Table    string
	Endpoint string
}

func Defaults() Config {
	return Config{
		HostPort:          "8080",
		RequestTimeout:    10 * time.Second,
		SessionTTL:        7 * 24 * time.Hour,
		BcryptCost:        10,
		AuthRatePerSecond: 5,
		AuthRateBurst:     10,
		LogLevel:          "info",
	}
}

// Load reads every setting from environment variables, e.g.
// STORE_URI -> store_uri, over the values from Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	store, err := ParseStoreURI(cfg.StoreURI)
	if err != nil {
		return nil, err
	}
	cfg.Store = store

	proxies, err := ParseTrustedProxies(cfg.TrustedProxiesRaw)
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = proxies

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.StoreURI == "" {
		errs = append(errs, errors.New("STORE_URI is required"))
	}
	if c.HostPort == "" {
		errs = append(errs, errors.New("HOST_PORT must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if c.AuthRatePerSecond <= 0 || c.AuthRateBurst < 1 {
		errs = append(errs, errors.New("AUTH_RATE_PER_SECOND and AUTH_RATE_BURST must be positive"))
	}
	if c.JWTSecretBase64 && c.JWTSecret != "" {
		if _, err := base64.StdEncoding.DecodeString(c.JWTSecret); err != nil {
			errs = append(errs, fmt.Errorf("JWT_SECRET is not valid base64: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SigningKey returns the HMAC key for session tokens.
func (c *Config) SigningKey() []byte {
	if c.JWTSecretBase64 {
		// Validate has already rejected bad input
		key, _ := base64.StdEncoding.DecodeString(c.JWTSecret)
		return key
	}
	return []byte(c.JWTSecret)
}

// ParseStoreURI accepts dynamodb://<table>[?endpoint=<url>] and memory://.
func ParseStoreURI(raw string) (StoreConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid STORE_URI: %w", err)
	}

	switch u.Scheme {
	case StoreDriverMemory:
		return StoreConfig{Driver: StoreDriverMemory}, nil
	case StoreDriverDynamo:
		if u.Host == "" {
			return StoreConfig{}, errors.New("invalid STORE_URI: dynamodb table name is required")
		}
		return StoreConfig{
			Driver:   StoreDriverDynamo,
			Table:    u.Host,
			Endpoint: u.Query().Get("endpoint"),
		}, nil
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_URI: unsupported driver %q", u.Scheme)
	}
}

// ParseTrustedProxies accepts a comma-separated list of IPs and CIDRs.
// A bare IP trusts that single address.
func ParseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
