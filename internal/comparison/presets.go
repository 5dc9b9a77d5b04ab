package comparison

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aura-dashboard/backend/internal/report"
)

const minArchitectureLen = 3

var ErrInvalidInput = errors.New("invalid model input")

type ValidationError struct {
	Side    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Side, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type preset struct {
	match        string
	architecture string
	framework    string
}

// Checked in order; the first id fragment that matches wins.
var presets = []preset{
	{match: "resnet", architecture: "CNN (ResNet-like)", framework: report.FrameworkTensorFlow},
	{match: "bert", architecture: "Transformer (BERT-like)", framework: report.FrameworkPyTorch},
	{match: "gpt", architecture: "Transformer (GPT-like)", framework: report.FrameworkPyTorch},
	{match: "skl_", framework: report.FrameworkScikitLearn},
}

// ApplyPreset fills architecture and framework from a known base model id. Values the
// caller supplied are kept.
func ApplyPreset(in report.ModelInput) report.ModelInput {
	in.SelectedBaseModel = strings.TrimSpace(in.SelectedBaseModel)
	in.SelectedFramework = strings.ToLower(strings.TrimSpace(in.SelectedFramework))
	in.Architecture = strings.TrimSpace(in.Architecture)
	in.DataSize = strings.TrimSpace(in.DataSize)

	id := strings.ToLower(in.SelectedBaseModel)
	if id == "" {
		return in
	}
	for _, p := range presets {
		if !strings.Contains(id, p.match) {
			continue
		}
		if in.Architecture == "" {
			in.Architecture = p.architecture
		}
		if in.SelectedFramework == "" {
			in.SelectedFramework = p.framework
		}
		break
	}
	return in
}

func ValidateInput(side string, in report.ModelInput) error {
	if utf8.RuneCountInString(in.Architecture) < minArchitectureLen {
		return &ValidationError{Side: side, Field: "architecture", Message: fmt.Sprintf("must be at least %d characters", minArchitectureLen)}
	}
	if in.DataSize == "" {
		return &ValidationError{Side: side, Field: "dataSize", Message: "is required"}
	}
	if in.SelectedFramework != "" && !report.IsKnownFramework(in.SelectedFramework) {
		return &ValidationError{Side: side, Field: "selectedFramework", Message: fmt.Sprintf("unknown framework %q", in.SelectedFramework)}
	}
	return nil
}
