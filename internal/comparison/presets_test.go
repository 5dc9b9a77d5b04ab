package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-dashboard/backend/internal/report"
)

func TestApplyPreset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   report.ModelInput
		want report.ModelInput
	}{
		{
			name: "resnet fills architecture and tensorflow",
			in:   report.ModelInput{SelectedBaseModel: "resnet50", DataSize: "1GB"},
			want: report.ModelInput{SelectedBaseModel: "resnet50", SelectedFramework: "tensorflow", Architecture: "CNN (ResNet-like)", DataSize: "1GB"},
		},
		{
			name: "bert uses pytorch",
			in:   report.ModelInput{SelectedBaseModel: "bert-base-uncased"},
			want: report.ModelInput{SelectedBaseModel: "bert-base-uncased", SelectedFramework: "pytorch", Architecture: "Transformer (BERT-like)"},
		},
		{
			name: "gpt uses pytorch",
			in:   report.ModelInput{SelectedBaseModel: "gpt2"},
			want: report.ModelInput{SelectedBaseModel: "gpt2", SelectedFramework: "pytorch", Architecture: "Transformer (GPT-like)"},
		},
		{
			name: "scikit-learn leaves architecture alone",
			in:   report.ModelInput{SelectedBaseModel: "skl_random_forest", Architecture: "Random forest"},
			want: report.ModelInput{SelectedBaseModel: "skl_random_forest", SelectedFramework: "scikit-learn", Architecture: "Random forest"},
		},
		{
			name: "explicit framework wins",
			in:   report.ModelInput{SelectedBaseModel: "bert-large", SelectedFramework: "TensorFlow"},
			want: report.ModelInput{SelectedBaseModel: "bert-large", SelectedFramework: "tensorflow", Architecture: "Transformer (BERT-like)"},
		},
		{
			name: "explicit architecture wins",
			in:   report.ModelInput{SelectedBaseModel: "resnet18", Architecture: "Tiny ResNet"},
			want: report.ModelInput{SelectedBaseModel: "resnet18", SelectedFramework: "tensorflow", Architecture: "Tiny ResNet"},
		},
		{
			name: "custom model untouched",
			in:   report.ModelInput{Architecture: " LSTM ", DataSize: " 5GB "},
			want: report.ModelInput{Architecture: "LSTM", DataSize: "5GB"},
		},
		{
			name: "unknown preset untouched",
			in:   report.ModelInput{SelectedBaseModel: "xgboost"},
			want: report.ModelInput{SelectedBaseModel: "xgboost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyPreset(tt.in))
		})
	}
}

func TestValidateInput(t *testing.T) {
	t.Parallel()
	valid := report.ModelInput{Architecture: "CNN", DataSize: "1GB"}
	require.NoError(t, ValidateInput("Model A", valid))

	other := valid
	other.SelectedFramework = report.FrameworkOther
	require.NoError(t, ValidateInput("Model A", other))

	tests := []struct {
		name  string
		in    report.ModelInput
		field string
	}{
		{"short architecture", report.ModelInput{Architecture: "NN", DataSize: "1GB"}, "architecture"},
		{"missing data size", report.ModelInput{Architecture: "CNN"}, "dataSize"},
		{"unknown framework", report.ModelInput{Architecture: "CNN", DataSize: "1GB", SelectedFramework: "jax"}, "selectedFramework"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput("Model B", tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Contains(t, err.Error(), "Model B")
		})
	}
}
