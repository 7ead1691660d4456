// Package redact provides privacy filtering for sensitive data carried in
// emitted URLs. Adapted from the teacher's HTTP header/body denylist
// matcher (internal/redact in the live-capture lineage): the matching
// rules are the same shape, but the thing being matched is a URL query
// parameter name instead of an HTTP header or JSON body field, since this
// compiler never sees request/response bodies at all.
package redact

import "strings"

// DefaultQueryParamDenylist contains query parameter names that are
// redacted by default. Carried over from the teacher's
// DefaultBodyFieldDenylist naming conventions, since the same secrets tend
// to show up in both bodies and query strings.
var DefaultQueryParamDenylist = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"accesstoken",
	"access_token",
	"refreshtoken",
	"refresh_token",
	"private_key",
	"privatekey",
	"client_secret",
	"clientsecret",
	"credential",
	"credentials",
	"auth",
	"session",
	"sessionid",
	"session_id",
	"sid",
	"ssn",
	"credit_card",
	"creditcard",
	"card_number",
	"cardnumber",
	"cvv",
	"pin",
}

// matchParamName checks if a query parameter name matches a pattern
// (case-insensitive, substring match so "user_token" and "tokenValue" both
// match "token").
func matchParamName(actual, pattern string) bool {
	actualLower := strings.ToLower(actual)
	patternLower := strings.ToLower(pattern)
	if actualLower == patternLower {
		return true
	}
	return strings.Contains(actualLower, patternLower)
}
