package workflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/forge/pkg/formatting"
)

// Complexity hints.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Input defaults applied by Normalize.
const (
	DefaultFormat     = "python"
	DefaultComplexity = ComplexityModerate
)

var complexities = []string{
	ComplexitySimple,
	ComplexityModerate,
	ComplexityComplex,
}

// Options controls optional content of the produced artifact.
type Options struct {
	IncludeTests    bool `json:"include_tests"`
	IncludeComments bool `json:"include_comments"`
}

// Input carries the caller-supplied fields of a run.
type Input struct {
	Task       string  `json:"task"`
	Format     string  `json:"format,omitempty"`
	Complexity string  `json:"complexity,omitempty"`
	Options    Options `json:"options"`
}

// Normalize trims the task, lowercases the hints, and fills in defaults for
// empty hints.
func (in Input) Normalize() Input {
	in.Task = strings.TrimSpace(in.Task)
	in.Format = strings.ToLower(strings.TrimSpace(in.Format))
	in.Complexity = strings.ToLower(strings.TrimSpace(in.Complexity))

	if in.Format == "" {
		in.Format = DefaultFormat
	}
	if in.Complexity == "" {
		in.Complexity = DefaultComplexity
	}
	return in
}

// Validate checks a normalized input. maxTaskSize bounds the task length in
// bytes; zero disables the bound. Failures wrap ErrInvalidInput.
func (in Input) Validate(maxTaskSize int64) error {
	if in.Task == "" {
		return fmt.Errorf("%w: task required", ErrInvalidInput)
	}
	if maxTaskSize > 0 && int64(len(in.Task)) > maxTaskSize {
		return fmt.Errorf(
			"%w: task is %s, limit %s",
			ErrInvalidInput,
			formatting.FormatBytes(int64(len(in.Task)), 1),
			formatting.FormatBytes(maxTaskSize, 1),
		)
	}
	if !slices.Contains(Formats(), in.Format) {
		return fmt.Errorf(
			"%w: format %q not one of %s",
			ErrInvalidInput, in.Format, strings.Join(Formats(), ", "),
		)
	}
	if !slices.Contains(complexities, in.Complexity) {
		return fmt.Errorf(
			"%w: complexity %q not one of %s",
			ErrInvalidInput, in.Complexity, strings.Join(complexities, ", "),
		)
	}
	return nil
}
