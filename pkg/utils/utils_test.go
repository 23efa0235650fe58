package utils

import (
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeToBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"20MB", 20 << 20},
		{"5 mb", 5 << 20},
		{"512kb", 512 << 10},
		{"100", 100},
		{"", 42},
		{"ten MB", 42},
		{"5XB", 42},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizeToBytes(tt.in, 42), tt.in)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Minute, ParseDuration("1m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("-5s", time.Hour))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1, 1, 500))
	assert.Equal(t, 1, ParseInt("abc", 1, 1, 500))
	assert.Equal(t, 1, ParseInt("-4", 1, 1, 500))
	assert.Equal(t, 500, ParseInt("9999", 1, 1, 500))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("17")
	require.NoError(t, err)
	assert.Equal(t, uint(17), id)

	for _, bad := range []string{"", "0", "-3", "x1"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/edit/4/", "/edit/4/"},
		{"/submit/?x=1", "/submit/?x=1"},
		{"", "/submit/"},
		{"https://evil.example/", "/submit/"},
		{"//evil.example/", "/submit/"},
		{"/\\evil.example", "/submit/"},
		{"edit/4/", "/submit/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeRedirectPath(tt.next, "/submit/"), tt.next)
	}
}

func TestSecretsMatch(t *testing.T) {
	assert.True(t, SecretsMatch("forget-me-not", "forget-me-not"))
	assert.False(t, SecretsMatch("forget-me-not ", "forget-me-not"))
	assert.False(t, SecretsMatch("", "forget-me-not"))
}

func TestMatchOrigin(t *testing.T) {
	assert.True(t, MatchOrigin("https://anything.test", "*"))
	assert.True(t, MatchOrigin("https://example.com", "https://example.com"))
	assert.True(t, MatchOrigin("https://example.com", "https://**.example.com"))
	assert.True(t, MatchOrigin("https://photos.example.com", "https://**.example.com"))
	assert.True(t, MatchOrigin("https://photos.example.com", "https://*.example.com"))
	assert.False(t, MatchOrigin("https://example.com", "https://*.example.com"))
	assert.False(t, MatchOrigin("https://example.org", "https://**.example.com"))

	assert.True(t, IsAllowedOrigin("https://photos.example.com/some/page", []string{"https://*.example.com"}))
	assert.False(t, IsAllowedOrigin("", []string{"*"}))
}

func TestDetectImageType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	ext, ok := DetectImageType(png)
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	_, ok = DetectImageType([]byte("%PDF-1.7 not a picture"))
	assert.False(t, ok)
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "garden.jpg", CleanFilename("../../etc/garden.jpg"))
	assert.Equal(t, "garden.jpg", CleanFilename(`C:\Users\jane\garden.jpg`))
	assert.Equal(t, "", CleanFilename(""))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#667eea")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x66, 0x7e, 0xea, 255}, c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, c)

	c, err = ParseColor("Navy")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 128, 255}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("")
	assert.Error(t, err)
}

func TestInitialsAndGradient(t *testing.T) {
	assert.Equal(t, "JD", Initials("Jane Doe, Berlin"))
	assert.Equal(t, "É", Initials("élodie"))
	assert.Equal(t, "?", Initials("  -- "))

	a1, a2 := GradientFor("Jane Doe")
	b1, b2 := GradientFor("  jane doe ")
	assert.Equal(t, a1, b1)
	assert.Equal(t, a2, b2)
	assert.NotEqual(t, a1, a2)
	assert.Regexp(t, `^rgb\(\d+,\d+,\d+\)$`, CSSColor(a1))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrRequestBadJSON, "Expected a JSON array of ids.")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, APIError{Code: ErrRequestBadJSON, Message: "Expected a JSON array of ids.", Status: 400}, body)
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		proxies ProxyList
		remote  string
		xff     string
		realIP  string
		want    string
	}{
		{"no proxies ignores headers", nil, "198.51.100.7:5000", "203.0.113.9", "203.0.113.10", "198.51.100.7"},
		{"untrusted peer ignores headers", proxies, "198.51.100.7:5000", "203.0.113.9", "", "198.51.100.7"},
		{"trusted peer", proxies, "192.0.2.1:443", "203.0.113.9", "", "203.0.113.9"},
		{"skips trusted hops", proxies, "10.1.2.3:443", "6.6.6.6, 203.0.113.9, 10.0.0.5", "", "203.0.113.9"},
		{"real ip fallback", proxies, "10.1.2.3:443", "", "203.0.113.10", "203.0.113.10"},
		{"all hops trusted", proxies, "10.1.2.3:443", "10.0.0.9", "", "10.1.2.3"},
		{"bare remote addr", nil, "198.51.100.7", "", "", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, tt.proxies.ClientIP(r))
		})
	}
}

func TestParseProxies(t *testing.T) {
	list, err := ParseProxies([]string{" 127.0.0.1 ", "::1", "", "172.16.0.0/12"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = ParseProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
