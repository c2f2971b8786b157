package config

import (
	"encoding/base64"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_URI", "memory://")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HostPort)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, []byte("secret"), cfg.SigningKey())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HOST_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("AUTH_RATE_BURST", "3")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("STORE_URI", "dynamodb://Notes?endpoint=http://localhost:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HostPort)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 3, cfg.AuthRateBurst)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, StoreConfig{Driver: StoreDriverDynamo, Table: "Notes", Endpoint: "http://localhost:8000"}, cfg.Store)
}

func TestLoad_RequiresSecretAndStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "STORE_URI is required")
}

func TestLoad_Base64Secret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET_BASE64", "true")
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0xff}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, cfg.SigningKey())

	t.Setenv("JWT_SECRET", "!!not base64!!")
	_, err = Load()
	assert.Error(t, err)
}

func TestParseStoreURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    StoreConfig
		wantErr bool
	}{
		{"Memory", "memory://", StoreConfig{Driver: StoreDriverMemory}, false},
		{"Dynamo", "dynamodb://Notekeep", StoreConfig{Driver: StoreDriverDynamo, Table: "Notekeep"}, false},
		{"Dynamo Missing Table", "dynamodb://", StoreConfig{}, true},
		{"Unknown Driver", "postgres://localhost/notes", StoreConfig{}, true},
		{"No Scheme", "notes", StoreConfig{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStoreURI(tc.uri)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies("")
	require.NoError(t, err)
	assert.Empty(t, prefixes)

	prefixes, err = ParseTrustedProxies(" 10.0.0.0/8, 192.168.1.7 ,fd00::/8")
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("fd00::/8"),
	}, prefixes)

	_, err = ParseTrustedProxies("10.0.0.0/8,not-an-ip")
	assert.Error(t, err)
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.1/32")}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "300.1.1.1")
	_, err = Load()
	assert.Error(t, err)
}
