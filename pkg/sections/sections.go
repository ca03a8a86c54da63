// Package sections recovers named fields from free-form text using ordered
// boundary markers of the form NAME: value.
//
// Extraction is a single left-to-right scan. Each marker captures everything
// between its separator and the next recognized marker (or the end of the
// text). A marker that never appears is absent from the result; absence is not
// an error, and the extractor never substitutes a default value.
package sections

import (
	"regexp"
	"strings"
)

// Separator immediately follows a section name to form a marker.
const Separator = ":"

// Sections maps a section name to its captured value. Names whose marker was
// not found are absent rather than mapped to the empty string.
type Sections map[string]string

// Lookup returns the value captured for name and whether its marker was found.
func (s Sections) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Or returns the value captured for name, or def when the marker was absent.
// A marker that was present with an empty value returns the empty string.
func (s Sections) Or(name, def string) string {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

type marker struct {
	name  string
	start int
	value int
}

// Extract scans text once and captures the value of every section in names.
// Only the first occurrence of each marker is recognized; later occurrences
// are ordinary text belonging to whichever section encloses them. When names
// share a prefix, the longest name matching at a position wins.
func Extract(text string, names []string) Sections {
	remaining := distinct(names)
	seen := make(map[string]bool, remaining)

	var marks []marker
	for i := 0; i < len(text) && len(seen) < remaining; {
		name := matchAt(text, i, names, seen)
		if name == "" {
			i++
			continue
		}

		seen[name] = true
		end := i + len(name) + len(Separator)
		marks = append(marks, marker{name: name, start: i, value: end})
		i = end
	}

	result := make(Sections, len(marks))
	for k, m := range marks {
		stop := len(text)
		if k+1 < len(marks) {
			stop = marks[k+1].start
		}
		result[m.name] = clean(text[m.value:stop])
	}

	return result
}

func matchAt(text string, i int, names []string, seen map[string]bool) string {
	if i > 0 && isWordByte(text[i-1]) {
		return ""
	}

	best := ""
	rest := text[i:]
	for _, name := range names {
		if name == "" || seen[name] || len(name) <= len(best) {
			continue
		}
		if strings.HasPrefix(rest, name) && strings.HasPrefix(rest[len(name):], Separator) {
			best = name
		}
	}
	return best
}

func distinct(names []string) int {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return len(set)
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "**")
	v = strings.TrimSuffix(v, "**")
	return strings.TrimSpace(v)
}

var bulletPattern = regexp.MustCompile(`^(?:[-*•]|\d+[.)])(?:\s+|$)`)

// List splits a section value into items. Multi-line values yield one item per
// non-blank line with any bullet or enumeration prefix removed; a single line
// is split on commas. Returns nil for a blank value.
func List(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var raw []string
	if strings.Contains(value, "\n") {
		raw = strings.Split(value, "\n")
	} else {
		raw = strings.Split(value, ",")
	}

	items := make([]string, 0, len(raw))
	for _, r := range raw {
		item := strings.TrimSpace(bulletPattern.ReplaceAllString(strings.TrimSpace(r), ""))
		if item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return nil
	}
	return items
}
