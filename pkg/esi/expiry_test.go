package esi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	defaultTTL := 5 * time.Minute

	tests := []struct {
		name    string
		headers map[string]string
		wantTTL time.Duration
		wantOK  bool
	}{
		{
			name:    "no headers uses default",
			wantTTL: defaultTTL,
			wantOK:  true,
		},
		{
			name:    "max-age",
			headers: map[string]string{"Cache-Control": "public, max-age=300"},
			wantTTL: 300 * time.Second,
			wantOK:  true,
		},
		{
			name: "max-age wins over expires",
			headers: map[string]string{
				"Cache-Control": "max-age=10",
				"Expires":       now.Add(time.Hour).Format(http.TimeFormat),
			},
			wantTTL: 10 * time.Second,
			wantOK:  true,
		},
		{
			name:    "max-age zero",
			headers: map[string]string{"Cache-Control": "max-age=0"},
		},
		{
			name:    "no-store",
			headers: map[string]string{"Cache-Control": "no-store"},
		},
		{
			name:    "no-cache",
			headers: map[string]string{"Cache-Control": "No-Cache"},
		},
		{
			name:    "expires relative to now",
			headers: map[string]string{"Expires": now.Add(60 * time.Second).Format(http.TimeFormat)},
			wantTTL: 60 * time.Second,
			wantOK:  true,
		},
		{
			name: "expires relative to date",
			headers: map[string]string{
				"Date":    now.Add(-time.Hour).Format(http.TimeFormat),
				"Expires": now.Add(-time.Hour + 90*time.Second).Format(http.TimeFormat),
			},
			wantTTL: 90 * time.Second,
			wantOK:  true,
		},
		{
			name:    "expires in the past",
			headers: map[string]string{"Expires": now.Add(-time.Second).Format(http.TimeFormat)},
		},
		{
			name:    "invalid expires",
			headers: map[string]string{"Expires": "0"},
		},
		{
			name:    "unparseable max-age falls through to expires",
			headers: map[string]string{"Cache-Control": "max-age=soon", "Expires": now.Add(time.Minute).Format(http.TimeFormat)},
			wantTTL: time.Minute,
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header := http.Header{}
			for key, value := range tt.headers {
				header.Set(key, value)
			}

			ttl, ok := responseTTL(header, now, defaultTTL)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantTTL, ttl)
			}
		})
	}
}

func TestErrorTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	base := 10 * time.Second

	t.Run("base", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, base, errorTTL(http.StatusInternalServerError, http.Header{}, now, base))
	})

	t.Run("retry-after seconds", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Retry-After": []string{"120"}}
		assert.Equal(t, 2*time.Minute, errorTTL(http.StatusServiceUnavailable, header, now, base))
	})

	t.Run("retry-after date", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Retry-After": []string{now.Add(30 * time.Second).Format(http.TimeFormat)}}
		assert.Equal(t, 30*time.Second, errorTTL(http.StatusServiceUnavailable, header, now, base))
	})

	t.Run("shorter retry-after keeps base", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Retry-After": []string{"1"}}
		assert.Equal(t, base, errorTTL(http.StatusServiceUnavailable, header, now, base))
	})

	t.Run("error limit reset on 420", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"X-Esi-Error-Limit-Reset": []string{"45"}}
		assert.Equal(t, 45*time.Second, errorTTL(420, header, now, base))
		assert.Equal(t, base, errorTTL(http.StatusNotFound, header, now, base))
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Now()

	for _, value := range []string{"", "-5", "garbage", now.Add(-time.Minute).UTC().Format(http.TimeFormat)} {
		_, ok := retryAfter(http.Header{"Retry-After": []string{value}}, now)
		assert.False(t, ok, "value %q", value)
	}
}
