package redact

import (
	"net/url"
	"strings"
)

// RedactedValue is the placeholder for redacted content.
const RedactedValue = "[REDACTED]"

// URLRedactor redacts sensitive query-string parameters from URLs before
// they reach the sink (spec_full §4.11). It is never applied to the URL a
// navigation is reasoned about in-memory: cause attribution depends on
// exact URL equality (spec §4.5), so redaction only ever touches the
// compiled output events after the fold has finished.
type URLRedactor struct {
	enabled         bool
	queryParamDeny  []string
}

// New creates a new URLRedactor with default settings.
func New(enabled bool) *URLRedactor {
	return &URLRedactor{
		enabled:        enabled,
		queryParamDeny: DefaultQueryParamDenylist,
	}
}

// NewWithCustomRules creates a URLRedactor with additional denylist
// patterns appended to the defaults.
func NewWithCustomRules(enabled bool, extraParams []string) *URLRedactor {
	r := New(enabled)
	if extraParams != nil {
		r.queryParamDeny = append(r.queryParamDeny, extraParams...)
	}
	return r
}

// IsEnabled returns whether redaction is enabled.
func (r *URLRedactor) IsEnabled() bool {
	return r.enabled
}

// RedactURL returns rawURL with any sensitive query parameter values
// replaced by RedactedValue. If rawURL doesn't parse as a URL, or carries
// no query string, it is returned unchanged.
func (r *URLRedactor) RedactURL(rawURL string) string {
	if !r.enabled || rawURL == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}

	values := u.Query()
	changed := false
	for key := range values {
		if r.shouldRedactParam(key) {
			values[key] = []string{RedactedValue}
			changed = true
		}
	}
	if !changed {
		return rawURL
	}

	// Encode escapes the placeholder's brackets; keep it literal.
	u.RawQuery = strings.ReplaceAll(values.Encode(), url.QueryEscape(RedactedValue), RedactedValue)
	return u.String()
}

func (r *URLRedactor) shouldRedactParam(name string) bool {
	for _, pattern := range r.queryParamDeny {
		if matchParamName(name, pattern) {
			return true
		}
	}
	return false
}
