package errors

import (
	"strings"
	"testing"
)

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code // empty means valid
	}{
		{"platform id", ValidateID("entry", "5KsDBWseXY6QegucYAoacS"), ""},
		{"id punctuation", ValidateID("entry", "landing-page_v2.1"), ""},
		{"max length", ValidateID("entry", strings.Repeat("a", 64)), ""},
		{"empty id", ValidateID("entry", ""), ErrCodeInvalidID},
		{"long id", ValidateID("entry", strings.Repeat("a", 65)), ErrCodeInvalidID},
		{"traversal", ValidateID("space", "../spaces"), ErrCodeInvalidID},
		{"query in id", ValidateID("asset", "a?limit=1"), ErrCodeInvalidID},
		{"nul in id", ValidateID("asset", "a\x00b"), ErrCodeInvalidID},

		{"ids", ValidateIDs("asset", []string{"a", "b"}), ""},
		{"no ids", ValidateIDs("asset", nil), ""},
		{"repeated id", ValidateIDs("asset", []string{"a", "b", "a"}), ErrCodeInvalidInput},
		{"bad id in list", ValidateIDs("asset", []string{"a", "b/c"}), ErrCodeInvalidID},

		{"https", ValidateBaseURL("https://api.contentful.com"), ""},
		{"local http", ValidateBaseURL("http://127.0.0.1:8080"), ""},
		{"empty url", ValidateBaseURL(""), ErrCodeInvalidConfig},
		{"no scheme", ValidateBaseURL("api.contentful.com"), ErrCodeInvalidConfig},
		{"ftp", ValidateBaseURL("ftp://api.contentful.com"), ErrCodeInvalidConfig},
		{"no host", ValidateBaseURL("https://"), ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == "" {
				if tt.err != nil {
					t.Errorf("unexpected error: %v", tt.err)
				}
				return
			}
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("code = %q (%v), want %q", got, tt.err, tt.want)
			}
		})
	}
}

func TestValidateIDMessageNamesLabel(t *testing.T) {
	err := ValidateID("environment", "")
	if err == nil || !strings.Contains(err.Error(), "environment id") {
		t.Errorf("error = %v, want it to name the environment id", err)
	}
}
