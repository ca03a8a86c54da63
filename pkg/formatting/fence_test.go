package formatting_test

import (
	"testing"

	"github.com/JaimeStill/forge/pkg/formatting"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", "  def f():\n    return 1\n", "def f():\n    return 1"},
		{"language tag", "```python\ndef f():\n    return 1\n```", "def f():\n    return 1"},
		{"no language tag", "```\nx = 1\n```", "x = 1"},
		{"surrounding prose", "Here you go:\n```go\npackage main\n```\nDone.", "package main"},
		{"first of many", "```js\na()\n```\n```js\nb()\n```", "a()"},
		{"unterminated fence", "```typescript\nconst x = 1;", "const x = 1;"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatting.StripFence(tt.content); got != tt.want {
				t.Errorf("StripFence(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
