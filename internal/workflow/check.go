package workflow

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

type format struct {
	lineComments []string
	blockComment [2]string
	quotes       string
	tripleQuotes bool
	delimiters   bool
	shape        *regexp.Regexp
	shapeDesc    string
	validate     func(string) error
}

var cFamily = format{
	lineComments: []string{"//"},
	blockComment: [2]string{"/*", "*/"},
	quotes:       "\"'`",
	delimiters:   true,
}

var formats = map[string]format{
	"python": {
		lineComments: []string{"#"},
		quotes:       "\"'",
		tripleQuotes: true,
		delimiters:   true,
		shape:        regexp.MustCompile(`(?m)^\s*(?:(?:async\s+)?def\s|class\s|import\s|from\s|@|[A-Za-z_]\w*\s*(?:=|\(|\.))`),
		shapeDesc:    "a definition, import, or statement",
	},
	"javascript": withShape(cFamily,
		`\b(?:function|const|let|var|class|export|import)\b|=>|module\.exports`,
		"a function, declaration, or module statement",
	),
	"typescript": withShape(cFamily,
		`\b(?:function|const|let|var|class|export|import|interface|type|enum)\b|=>`,
		"a function, declaration, type, or module statement",
	),
	"go": withShape(cFamily,
		`(?m)^\s*package\s+\w+`,
		"a package clause",
	),
	"java": withShape(cFamily,
		`\b(?:class|interface|enum|record)\s+\w+`,
		"a type declaration",
	),
	"sql": {
		lineComments: []string{"--"},
		blockComment: [2]string{"/*", "*/"},
		quotes:       "'\"",
		delimiters:   true,
		shape:        regexp.MustCompile(`(?i)\b(?:select|insert|update|delete|create|alter|drop|with)\b`),
		shapeDesc:    "a SQL statement",
	},
	"html": {
		shape:     regexp.MustCompile(`(?i)<[a-z!][^>]*>`),
		shapeDesc: "an HTML element",
	},
	"json": {
		validate: func(s string) error {
			if !json.Valid([]byte(s)) {
				return fmt.Errorf("artifact is not valid JSON")
			}
			return nil
		},
	},
	"text": {},
}

func withShape(f format, pattern, desc string) format {
	f.shape = regexp.MustCompile(pattern)
	f.shapeDesc = desc
	return f
}

// Formats returns the supported artifact formats in sorted order.
func Formats() []string {
	return slices.Sorted(maps.Keys(formats))
}

// CheckStructure runs the generation-independent structural check for an
// artifact of the given format and returns one message per problem found.
// An empty artifact yields a single error and no further checks. Unknown
// formats are only checked for emptiness.
func CheckStructure(formatName, artifact string) []string {
	if strings.TrimSpace(artifact) == "" {
		return []string{"artifact is empty"}
	}

	f, ok := formats[formatName]
	if !ok {
		return nil
	}

	var problems []string

	if f.delimiters {
		if msg := checkDelimiters(f, artifact); msg != "" {
			problems = append(problems, msg)
		}
	}

	if f.validate != nil {
		if err := f.validate(artifact); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if f.shape != nil && !f.shape.MatchString(artifact) {
		problems = append(problems, fmt.Sprintf(
			"artifact does not look like %s: expected %s",
			formatName, f.shapeDesc,
		))
	}

	return problems
}

type openDelim struct {
	ch   byte
	line int
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

func checkDelimiters(f format, src string) string {
	var stack []openDelim
	line := 1

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '\n':
			line++
			continue
		case f.lineCommentAt(src, i):
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				i = len(src)
				continue
			}
			i += j - 1
			continue
		case f.blockComment[0] != "" && strings.HasPrefix(src[i:], f.blockComment[0]):
			body := src[i+len(f.blockComment[0]):]
			end := strings.Index(body, f.blockComment[1])
			if end < 0 {
				return fmt.Sprintf("unterminated block comment starting on line %d", line)
			}
			line += strings.Count(body[:end], "\n")
			i += len(f.blockComment[0]) + end + len(f.blockComment[1]) - 1
			continue
		case f.tripleQuotes && isTripleQuote(src, i):
			end, lines := skipTripleString(src, i)
			if end < 0 {
				return fmt.Sprintf("unterminated string literal starting on line %d", line)
			}
			line += lines
			i = end
			continue
		case strings.IndexByte(f.quotes, c) >= 0:
			end, lines := skipString(src, i)
			if end < 0 {
				return fmt.Sprintf("unterminated string literal starting on line %d", line)
			}
			line += lines
			i = end
			continue
		}

		switch c {
		case '(', '[', '{':
			stack = append(stack, openDelim{ch: c, line: line})
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].ch != closers[c] {
				return fmt.Sprintf("unbalanced delimiters: unexpected %q on line %d", c, line)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Sprintf("unbalanced delimiters: %q opened on line %d is never closed", top.ch, top.line)
	}

	return ""
}

func (f format) lineCommentAt(src string, i int) bool {
	for _, lc := range f.lineComments {
		if strings.HasPrefix(src[i:], lc) {
			return true
		}
	}
	return false
}

// skipString returns the index of the quote closing the literal opened at
// src[start] and the number of newlines inside it, or -1 when the literal is
// never closed. Backslash escapes apply to every quote except the backtick.
func skipString(src string, start int) (int, int) {
	quote := src[start]
	lines := 0

	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if quote != '`' && i+1 < len(src) {
				i++
				if src[i] == '\n' {
					lines++
				}
			}
		case '\n':
			lines++
		case quote:
			return i, lines
		}
	}

	return -1, lines
}

func isTripleQuote(src string, i int) bool {
	c := src[i]
	return (c == '"' || c == '\'') && strings.HasPrefix(src[i:], strings.Repeat(string(c), 3))
}

// skipTripleString is skipString for a literal opened by three quotes at
// src[start]. Only the same three quotes close it; single quotes of either
// kind are plain text inside.
func skipTripleString(src string, start int) (int, int) {
	closing := src[start : start+3]
	lines := 0

	for i := start + 3; i < len(src); i++ {
		switch {
		case src[i] == '\\':
			if i+1 < len(src) {
				i++
				if src[i] == '\n' {
					lines++
				}
			}
		case src[i] == '\n':
			lines++
		case strings.HasPrefix(src[i:], closing):
			return i + 2, lines
		}
	}

	return -1, lines
}
