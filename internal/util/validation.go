package util

import (
	"errors"
	"net/url"
	"strings"
)

var (
	errURLRequired = errors.New("url is required")
	errURLScheme   = errors.New("url must use http or https")
	errURLHost     = errors.New("url must include a host")
)

// ValidateSubmissionURL checks that raw is an absolute http(s) URL.
func ValidateSubmissionURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errURLRequired
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errURLScheme
	}
	if u.Host == "" {
		return errURLHost
	}
	return nil
}

// ValidateLength reports whether s has between min and max runes.
func ValidateLength(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}
