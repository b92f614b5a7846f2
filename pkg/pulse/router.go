package pulse

import "strings"

// Matches reports whether an event name matches a subscription pattern.
//
// Rules:
//   - "*" matches every event name.
//   - A pattern with no "*" matches only by exact equality.
//   - Otherwise any run of adjacent "*" collapses to a single "*" (so
//     "a.**.b" behaves as "a.*.b") and the pattern is split on "*" into
//     segments. The event name must start with the first segment, end with
//     the last, and contain each interior segment in order between them,
//     with no two segments consuming the same text.
//
// This covers prefix ("player.*"), suffix ("*.created"), and sandwich
// ("player.*.created") patterns. Matches is a pure function and safe for
// concurrent use.
func Matches(eventName, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return eventName == pattern
	}

	segments := strings.Split(collapseWildcards(pattern), "*")
	first := segments[0]
	last := segments[len(segments)-1]

	if len(eventName) < len(first)+len(last) {
		return false
	}
	if !strings.HasPrefix(eventName, first) {
		return false
	}
	if !strings.HasSuffix(eventName, last) {
		return false
	}

	// Interior segments must appear in order within the region between the
	// prefix and suffix matches.
	middle := eventName[len(first) : len(eventName)-len(last)]
	pos := 0
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(middle[pos:], seg)
		if idx < 0 {
			return false
		}
		pos += idx + len(seg)
	}
	return true
}

// collapseWildcards reduces every run of adjacent '*' to a single '*'.
func collapseWildcards(pattern string) string {
	if !strings.Contains(pattern, "**") {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	prevStar := false
	for _, r := range pattern {
		if r == '*' {
			if prevStar {
				continue
			}
			prevStar = true
		} else {
			prevStar = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isPattern reports whether a subscription key is a wildcard pattern.
func isPattern(key string) bool {
	return strings.Contains(key, "*")
}
