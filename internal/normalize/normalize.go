// Package normalize holds the text policy every connector applies to raw platform data.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	hashtagRe    = regexp.MustCompile(`#([\x{0590}-\x{05FF}A-Za-z0-9_]+)`)
	countRe      = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([KkMmBb]?)$`)
)

// Text collapses whitespace runs to a single space and trims the ends.
func Text(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Hashtags returns the distinct #tags found in s, without the leading '#', in first-seen order.
func Hashtags(s string) []string {
	matches := hashtagRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return Unique(tags)
}

// Unique concatenates string lists dropping blanks and duplicates, keeping first-seen order.
func Unique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Language is a two-letter guess: any Hebrew codepoint means "he".
func Language(s string) string {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return "he"
		}
	}
	return "en"
}

// Count parses display counters such as "1.2K", "3M" or "12,345".
func Count(s string) *int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	switch unicode.ToUpper(rune(firstByte(m[2]))) {
	case 'K':
		n *= 1e3
	case 'M':
		n *= 1e6
	case 'B':
		n *= 1e9
	}
	v := int64(math.Round(n))
	return &v
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

// Truncate cuts s to at most n runes, ending with "..." when it had to cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// FirstLine returns the first non-empty line of s.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
