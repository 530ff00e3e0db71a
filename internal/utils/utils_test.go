package utils

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		message string
		want    string
	}{
		{"ten digits get country code", "98765 43210", "", "https://wa.me/919876543210"},
		{"already prefixed", "+91-98765-43210", "", "https://wa.me/919876543210"},
		{"other length untouched", "0044 20 7946 0958", "", "https://wa.me/00442079460958"},
		{"message escaped", "9876543210", "Hi, booking #12 & PIN", "https://wa.me/919876543210?text=Hi%2C%20booking%20%2312%20%26%20PIN"},
		{"no digits", "n/a", "hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WhatsAppLink(tt.phone, tt.message))
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		info := ParseUserAgent("")
		assert.Equal(t, "unknown", info.DeviceType)
		assert.Equal(t, "Unknown", info.Browser)
	})

	t.Run("android phone", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Linux; Android 12; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36")
		assert.Equal(t, "mobile", info.DeviceType)
		assert.Contains(t, info.OS, "Android")
		assert.Contains(t, info.Browser, "Chrome")
		assert.False(t, info.IsBot)
	})

	t.Run("ipad", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "tablet", info.DeviceType)
	})

	t.Run("desktop", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "desktop", info.DeviceType)
	})

	t.Run("bot", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, info.IsBot)
	})
}

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"public real ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "10.0.0.1:1234", "203.0.113.7"},
		{"private real ip left to gin", map[string]string{"X-Real-IP": "10.1.1.1"}, "198.51.100.2:80", "10.1.1.1"},
		{"first public forwarded", map[string]string{"X-Forwarded-For": "10.0.0.5, 203.0.113.9, 198.51.100.1"}, "10.0.0.1:1", "203.0.113.9"},
		{"all private forwarded", map[string]string{"X-Forwarded-For": "192.168.1.4, 10.0.0.2"}, "10.0.0.1:1", "192.168.1.4"},
		{"remote addr", nil, "198.51.100.20:5555", "198.51.100.20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetRealIP(c))
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, IsPrivateIP(net.ParseIP("172.20.1.1")))
	assert.False(t, IsPrivateIP(net.ParseIP("8.8.8.8")))
	assert.False(t, IsPrivateIP(nil))
}
