package esi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// responseTTL derives how long a successful response may be cached.
// Cache-Control wins over Expires; Expires is measured against the
// server's Date header when present. ok is false when the response must
// not be cached.
func responseTTL(header http.Header, now time.Time, defaultTTL time.Duration) (time.Duration, bool) {
	if cacheControl := header.Get("Cache-Control"); cacheControl != "" {
		for _, directive := range strings.Split(cacheControl, ",") {
			directive = strings.ToLower(strings.TrimSpace(directive))

			switch {
			case directive == "no-store", directive == "no-cache":
				return 0, false
			case strings.HasPrefix(directive, "max-age="):
				seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
				if err != nil {
					continue
				}

				if seconds <= 0 {
					return 0, false
				}

				return time.Duration(seconds) * time.Second, true
			}
		}
	}

	if expiresHeader := header.Get("Expires"); expiresHeader != "" {
		expires, err := http.ParseTime(expiresHeader)
		if err != nil {
			// RFC 9111: an invalid Expires means already expired
			return 0, false
		}

		reference := now
		if dateHeader := header.Get("Date"); dateHeader != "" {
			if date, err := http.ParseTime(dateHeader); err == nil {
				reference = date
			}
		}

		ttl := expires.Sub(reference)
		if ttl <= 0 {
			return 0, false
		}

		return ttl, true
	}

	return defaultTTL, true
}

// errorTTL derives how long a failure stays in the negative cache. Retry-After
// and, for 420 responses, ESI's error-limit reset window can only lengthen it.
func errorTTL(statusCode int, header http.Header, now time.Time, base time.Duration) time.Duration {
	ttl := base

	if wait, ok := retryAfter(header, now); ok && wait > ttl {
		ttl = wait
	}

	if statusCode == constants.HTTPStatusErrorLimited {
		if seconds, err := strconv.Atoi(header.Get(constants.HeaderErrorLimitReset)); err == nil {
			if reset := time.Duration(seconds) * time.Second; reset > ttl {
				ttl = reset
			}
		}
	}

	return ttl
}

// retryAfter parses Retry-After as delta seconds or an HTTP date.
func retryAfter(header http.Header, now time.Time) (time.Duration, bool) {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}

		return time.Duration(seconds) * time.Second, true
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}

	wait := when.Sub(now)
	if wait <= 0 {
		return 0, false
	}

	return wait, true
}
