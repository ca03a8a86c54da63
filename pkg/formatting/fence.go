package formatting

import (
	"regexp"
	"strings"
)

var fenceBlockRegex = regexp.MustCompile("(?s)```[\\w+#.-]*[ \\t]*\\n?(.*?)\\n?```")

var openFenceRegex = regexp.MustCompile("^```[\\w+#.-]*[ \\t]*\\n?")

// StripFence returns the body of the first markdown code fence in content.
// Content with no fence is returned trimmed. An opening fence that is never
// closed (a truncated response) is removed and the remainder returned.
func StripFence(content string) string {
	content = strings.TrimSpace(content)

	if matches := fenceBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}

	if strings.HasPrefix(content, "```") {
		return strings.TrimSpace(openFenceRegex.ReplaceAllString(content, ""))
	}

	return content
}
