package ws

import (
	"net/http/httptest"
	"testing"

	"github.com/hexclash/backend/internal/config"
)

func TestCheckOriginOutsideProduction(t *testing.T) {
	saved := wsConfig
	defer func() { wsConfig = saved }()

	wsConfig = nil
	r := httptest.NewRequest("GET", "/api/v1/arena/ws", nil)
	r.Header.Set("Origin", "http://evil.example")
	if !checkOrigin(r) {
		t.Error("Unconfigured ws layer should allow any origin")
	}

	wsConfig = &config.Config{Environment: "development", AllowedOrigins: "https://hexclash.io"}
	if !checkOrigin(r) {
		t.Error("Development should allow any origin")
	}
}

func TestCheckOriginProduction(t *testing.T) {
	saved := wsConfig
	defer func() { wsConfig = saved }()
	wsConfig = &config.Config{
		Environment:    "production",
		AllowedOrigins: "https://hexclash.io, https://demo.hexclash.io",
	}

	cases := []struct {
		origin string
		want   bool
	}{
		{"https://hexclash.io", true},
		{"https://demo.hexclash.io", true}, // allowlist entries are trimmed
		{"https://evil.example", false},
		{"", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/arena/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := checkOrigin(r); got != tc.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}
