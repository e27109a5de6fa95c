package errors

import (
	"net/url"
	"regexp"
)

// The platform's record ids: letters, digits, '.', '_' and '-', at most 64
// characters. Anything else could change the meaning of a URL path.
var recordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

const maxIDLength = 64

// ValidateID checks a record id before it is placed in a URL path. The
// label ("entry", "space") names the id in the message.
func ValidateID(label, id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidID, "%s id cannot be empty", label)
	case len(id) > maxIDLength:
		return New(ErrCodeInvalidID, "%s id too long (max %d characters)", label, maxIDLength)
	case !recordIDPattern.MatchString(id):
		return New(ErrCodeInvalidID, "%s id contains invalid characters: %q", label, id)
	}
	return nil
}

// ValidateIDs applies ValidateID to each id and rejects repeats.
func ValidateIDs(label string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := ValidateID(label, id); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return New(ErrCodeInvalidInput, "%s id %s given twice", label, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateBaseURL checks that an API base URL is an absolute http or https
// URL with a host.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidConfig, "base url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return New(ErrCodeInvalidConfig, "base url must be an http:// or https:// URL: %s", raw)
	}
	return nil
}
