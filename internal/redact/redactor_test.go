package redact

import "testing"

func TestRedactURL(t *testing.T) {
	r := New(true)

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "redacts token query param",
			url:      "https://example.com/search?q=golang&token=abc123",
			expected: "https://example.com/search?q=golang&token=" + RedactedValue,
		},
		{
			name:     "redacts session_id",
			url:      "https://example.com/?session_id=xyz",
			expected: "https://example.com/?session_id=" + RedactedValue,
		},
		{
			name:     "case insensitive param matching",
			url:      "https://example.com/?API_KEY=secret",
			expected: "https://example.com/?API_KEY=" + RedactedValue,
		},
		{
			name:     "preserves non-sensitive params",
			url:      "https://example.com/search?q=golang",
			expected: "https://example.com/search?q=golang",
		},
		{
			name:     "no query string unchanged",
			url:      "https://example.com/path",
			expected: "https://example.com/path",
		},
		{
			name:     "empty url unchanged",
			url:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.RedactURL(tt.url)
			if result != tt.expected {
				t.Errorf("RedactURL(%q) = %q, want %q", tt.url, result, tt.expected)
			}
		})
	}
}

func TestRedactURLDisabled(t *testing.T) {
	r := New(false)

	url := "https://example.com/?password=secret123"
	result := r.RedactURL(url)

	if result != url {
		t.Errorf("expected url to pass through unchanged when disabled, got %s", result)
	}
}

func TestRedactURLSubstringMatch(t *testing.T) {
	r := New(true)

	url := "https://example.com/?user_password=secret&unrelated=value"
	result := r.RedactURL(url)

	if containsString(result, "secret") {
		t.Errorf("expected user_password to be redacted, got %s", result)
	}
	if !containsString(result, "unrelated=value") {
		t.Errorf("expected unrelated param to pass through, got %s", result)
	}
}

func TestRedactURLMalformed(t *testing.T) {
	r := New(true)

	raw := "://not a valid url"
	result := r.RedactURL(raw)
	if result != raw {
		t.Errorf("expected malformed url to pass through unchanged, got %s", result)
	}
}

func TestCustomQueryParamRules(t *testing.T) {
	r := NewWithCustomRules(true, []string{"x-custom-secret"})

	url := "https://example.com/?x-custom-secret=hidden&visible=shown"
	result := r.RedactURL(url)

	if containsString(result, "hidden") {
		t.Errorf("expected custom param to be redacted, got %s", result)
	}
	if !containsString(result, "visible=shown") {
		t.Errorf("expected other param to pass through, got %s", result)
	}
}

func TestIsEnabled(t *testing.T) {
	if !New(true).IsEnabled() {
		t.Errorf("expected enabled redactor to report IsEnabled true")
	}
	if New(false).IsEnabled() {
		t.Errorf("expected disabled redactor to report IsEnabled false")
	}
}

func containsString(s, substr string) bool {
	return len(substr) > 0 && len(s) >= len(substr) && findSubstring(s, substr)
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
