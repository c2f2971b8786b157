package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestFrom(remoteAddr string, forwardedFor ...string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r.RemoteAddr = remoteAddr
	for _, v := range forwardedFor {
		r.Header.Add("X-Forwarded-For", v)
	}
	return r
}

func TestClientIP_UntrustedPeerIgnoresHeaders(t *testing.T) {
	resolver := NewClientIPResolver(nil)

	r := requestFrom("203.0.113.9:5555", "198.51.100.1")
	r.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "203.0.113.9", resolver.ClientIP(r))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	resolver := NewClientIPResolver([]netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
	})

	tests := []struct {
		name       string
		remoteAddr string
		xff        []string
		want       string
	}{
		{"No Header", "10.0.0.5:80", nil, "10.0.0.5"},
		{"Single Hop", "10.0.0.5:80", []string{"198.51.100.1"}, "198.51.100.1"},
		{"Spoofed Prefix Ignored", "10.0.0.5:80", []string{"1.2.3.4, 198.51.100.1"}, "198.51.100.1"},
		{"Skips Trusted Hops", "10.0.0.5:80", []string{"198.51.100.1, 10.0.0.7"}, "198.51.100.1"},
		{"Multiple Headers", "10.0.0.5:80", []string{"1.2.3.4", "198.51.100.1"}, "198.51.100.1"},
		{"Garbled Hop", "10.0.0.5:80", []string{"1.2.3.4, garbage"}, "10.0.0.5"},
		{"Untrusted Peer", "203.0.113.9:80", []string{"198.51.100.1"}, "203.0.113.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolver.ClientIP(requestFrom(tc.remoteAddr, tc.xff...)))
		})
	}
}

func TestIPRateLimiter_RotatingForwardedForStillLimited(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 10)
	resolver := NewClientIPResolver(nil)

	allowed := 0
	for i := 0; i < 100; i++ {
		r := requestFrom("203.0.113.9:4000", fmt.Sprintf("198.51.100.%d", i))
		if limiter.Allow(resolver.ClientIP(r)) {
			allowed++
		}
	}
	assert.Equal(t, 10, allowed)
}
