package utils

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// APIKeyPrefix is the prefix every Factory API key carries
const APIKeyPrefix = "fk-"

var batchSeparators = regexp.MustCompile(`[\n,;]+`)

// MaskAPIKey hides the middle of a key for display. Keys shorter than ten
// characters are returned unchanged.
func MaskAPIKey(key string) string {
	if len(key) < 10 {
		return key
	}
	return key[:3] + "***...***" + key[len(key)-3:]
}

// ParseBatchAPIKeys splits text on newlines, commas and semicolons and returns
// the distinct fk- keys in the order they first appear.
func ParseBatchAPIKeys(text string) []string {
	parts := lo.Map(batchSeparators.Split(text, -1), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	keys := lo.Filter(parts, func(p string, _ int) bool {
		return strings.HasPrefix(p, APIKeyPrefix)
	})
	return lo.Uniq(keys)
}

// ValidateURL validates that a URL has a valid scheme and host
func ValidateURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// IsTerminal reports whether stdin is attached to a terminal
func IsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
