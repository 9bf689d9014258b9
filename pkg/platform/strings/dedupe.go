// Package strings holds small list helpers for configuration and wire values.
package strings

import "strings"

// Dedupe drops repeated values, keeping the first occurrence of each.
// Values are compared verbatim.
func Dedupe(values []string) []string {
	return uniq(values, func(v string) (string, bool) { return v, true })
}

// DedupeAndTrim trims whitespace, drops blanks, then dedupes.
//
//	DedupeAndTrim([]string{" https://a.io ", "https://a.io", ""}) // [https://a.io]
func DedupeAndTrim(values []string) []string {
	return uniq(values, func(v string) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
}

// SplitList parses a comma-separated environment value such as CORS_ORIGIN.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(raw, ","))
}

func uniq(values []string, normalize func(string) (string, bool)) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, raw := range values {
		v, keep := normalize(raw)
		if !keep {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
