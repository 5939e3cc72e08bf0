package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxCategoryLength caps the length of a single category tag.
const MaxCategoryLength = 64

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
	lineBreak       = regexp.MustCompile(`\r\n|\r|\n`)
)

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateCategory checks operator-entered category text.
func ValidateCategory(category string) (bool, string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return false, "Category is required"
	}
	if len(category) > MaxCategoryLength {
		return false, "Category is too long"
	}
	return true, ""
}

// NormalizeCategory trims and lowercases a category so comparisons are case-insensitive.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// NormalizeCategories lowercases every category, dropping empty and repeated entries.
// Order of first occurrence is kept.
func NormalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		n := NormalizeCategory(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// SplitLines splits a description on line breaks (\n, \r\n or \r).
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	return lineBreak.Split(text, -1)
}

// Slugify converts a title to a URL-safe slug.
// "Morning Brew" -> "morning-brew", "Café Société" -> "cafe-societe".
func Slugify(s string) string {
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
