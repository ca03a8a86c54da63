package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JaimeStill/forge/internal/workflow"
)

// readInputs builds the run inputs from either a batch file or the single-run
// flags. A batch file holds a JSON array of inputs; "-" reads it from stdin.
// A task of "-" reads the task description from stdin.
func readInputs(f *flags, stdin io.Reader) ([]workflow.Input, error) {
	if f.batch != "" {
		if f.task != "" {
			return nil, errors.New("-task and -batch are mutually exclusive")
		}
		return readBatch(f.batch, stdin)
	}

	task := f.task
	if task == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read task from stdin: %w", err)
		}
		task = string(data)
	}
	if strings.TrimSpace(task) == "" {
		return nil, errors.New("a task is required: use -task or -batch")
	}

	return []workflow.Input{{
		Task:       task,
		Format:     f.format,
		Complexity: f.complexity,
		Options: workflow.Options{
			IncludeTests:    f.tests,
			IncludeComments: f.comments,
		},
	}}, nil
}

func readBatch(path string, stdin io.Reader) ([]workflow.Input, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer file.Close()
		r = file
	}

	var inputs []workflow.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	if len(inputs) == 0 {
		return nil, errors.New("batch contains no inputs")
	}
	return inputs, nil
}
