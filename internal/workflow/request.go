package workflow

import (
	"context"
	"strings"

	"github.com/JaimeStill/forge/internal/prompts"
	"github.com/JaimeStill/forge/pkg/sections"
)

// request composes the stage prompt, calls the generation service, and
// extracts the stage's sections from the response.
func request(ctx context.Context, rt *Runtime, stage prompts.Stage, rec *Record) (sections.Sections, error) {
	parsed, _, err := requestRaw(ctx, rt, stage, rec)
	return parsed, err
}

// requestRaw is request that also returns the raw response text.
func requestRaw(ctx context.Context, rt *Runtime, stage prompts.Stage, rec *Record) (sections.Sections, string, error) {
	prompt, err := ComposePrompt(stage, rec)
	if err != nil {
		return nil, "", err
	}

	names, err := prompts.Sections(stage)
	if err != nil {
		return nil, "", err
	}

	text, err := rt.generate(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	return sections.Extract(text, names), text, nil
}

func noneAsEmpty(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "none") {
		return ""
	}
	return v
}

func listItems(v string) []string {
	var items []string
	for _, item := range sections.List(v) {
		if noneAsEmpty(item) != "" {
			items = append(items, item)
		}
	}
	return items
}
