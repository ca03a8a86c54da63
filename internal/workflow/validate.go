package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/forge/internal/prompts"
)

const unspecifiedIssue = "quality check failed without listing specific issues"

var validateStage = stage{
	name: StageValidate,
	run:  validate,
	fallback: func(rec *Record) {
		rec.NeedsRetry = retryNeeded(rec)
	},
}

// ValidateNode returns a state node that judges the current artifact. The
// structural check runs first and needs no generation call; the quality
// check runs only when the structure passes. If the quality check cannot be
// completed, the structural verdict stands.
func ValidateNode(rt *Runtime) state.StateNode {
	return stageNode(rt, validateStage)
}

func validate(ctx context.Context, rt *Runtime, rec *Record) error {
	rec.ValidationErrors = CheckStructure(rec.Input.Format, rec.Artifact)
	rec.IsValid = len(rec.ValidationErrors) == 0
	rec.NeedsRetry = retryNeeded(rec)

	if !rec.IsValid {
		return nil
	}

	verdict, issues, suggestions, err := qualityCheck(ctx, rt, rec)
	if err != nil {
		return fmt.Errorf("quality check: %w", err)
	}

	rec.Suggestions.Append(suggestions...)
	rec.IsValid = verdict == prompts.VerdictPass
	if !rec.IsValid {
		if len(issues) == 0 {
			issues = []string{unspecifiedIssue}
		}
		rec.ValidationErrors = issues
	}
	rec.NeedsRetry = retryNeeded(rec)
	return nil
}

func qualityCheck(ctx context.Context, rt *Runtime, rec *Record) (string, []string, []string, error) {
	parsed, err := request(ctx, rt, prompts.StageValidate, rec)
	if err != nil {
		return "", nil, nil, err
	}

	raw, ok := parsed.Lookup(prompts.SectionVerdict)
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: %s", ErrMissingSection, prompts.SectionVerdict)
	}

	verdict := strings.ToUpper(firstWord(raw))
	if verdict != prompts.VerdictPass && verdict != prompts.VerdictFail {
		return "", nil, nil, fmt.Errorf("%w: verdict %q", ErrInvalidResponse, raw)
	}

	issues := listItems(parsed.Or(prompts.SectionIssues, ""))
	suggestions := listItems(parsed.Or(prompts.SectionSuggestions, ""))
	return verdict, issues, suggestions, nil
}

func retryNeeded(rec *Record) bool {
	return !rec.IsValid && len(rec.ValidationErrors) > 0
}

func firstWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '.' || r == '*' || r == ','
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
