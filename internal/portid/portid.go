// Package portid extracts positional ids ("1/0/12", "0-8-1-12") from
// interface and physical port names. The id is the key that correlates
// ENTITY-MIB ports, IF-MIB interfaces and module placement.
package portid

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`\d+(?:/\d+)*`)

// Extract returns the slash-joined positional id found in s. Of all digit
// runs in s the one with the most segments wins, the right-most on ties:
// "GigabitEthernet1/0/12" yields "1/0/12", "Gi1/0/1.100" yields "1/0/1".
func Extract(s string) string {
	best := ""
	bestSegs := 0
	for _, m := range idPattern.FindAllString(s, -1) {
		segs := strings.Count(m, "/") + 1
		if segs >= bestSegs {
			best, bestSegs = m, segs
		}
	}
	return best
}

// FromNames extracts the id from the first of names that carries one.
func FromNames(names ...string) string {
	for _, n := range names {
		if id := Extract(n); id != "" {
			return id
		}
	}
	return ""
}

// Dashed converts a slash-joined id to its dash-joined form.
func Dashed(id string) string {
	return strings.ReplaceAll(id, "/", "-")
}

// Segments splits a dash- or slash-joined id.
func Segments(id string) []string {
	if id == "" {
		return nil
	}
	return strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '/' })
}

// Join renders segments as a dash-joined id.
func Join(segs []string) string {
	return strings.Join(segs, "-")
}

// Matcher compiles the pattern that finds id inside another name without
// matching a longer id: "1/1" matches "Gi1/1" and "Gi1/1/Bay" but not
// "Gi1/1/1" or "Gi11/1".
func Matcher(id string) *regexp.Regexp {
	slash := strings.ReplaceAll(id, "-", "/")
	return regexp.MustCompile(`(?i)(?:^|[^\d/])` + regexp.QuoteMeta(slash) + `(?:$|[^\d/]|/\D)`)
}
