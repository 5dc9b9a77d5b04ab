// Package report holds the energy comparison report record and its interchange encodings.
package report

import (
	"errors"
	"time"
)

const (
	ModelAName = "Model A"
	ModelBName = "Model B"

	// CustomBaseModel is recorded when a side was described by hand rather than picked from presets.
	CustomBaseModel = "Custom"

	// TimeLayout is the ISO 8601 form of GeneratedAt, millisecond precision, always UTC.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Frameworks a side may declare. The empty string means no framework was chosen.
const (
	FrameworkTensorFlow  = "tensorflow"
	FrameworkPyTorch     = "pytorch"
	FrameworkScikitLearn = "scikit-learn"
	FrameworkOther       = "other"
)

var ErrIncompleteInput = errors.New("both predictions must complete before a report can be built")

// ModelDetails is one side of a comparison.
type ModelDetails struct {
	Name                          string  `json:"name"`
	SelectedBaseModel             string  `json:"selectedBaseModel"`
	SelectedFramework             string  `json:"selectedFramework,omitempty"`
	Architecture                  string  `json:"architecture"`
	DataSize                      string  `json:"dataSize"`
	PredictedEnergyConsumptionRaw string  `json:"predictedEnergyConsumptionRaw"`
	ParsedEnergyValue             float64 `json:"parsedEnergyValue"`
	EnergyUnit                    string  `json:"energyUnit"`
	ConfidenceLevel               string  `json:"confidenceLevel"`
}

// ChartData is one row of the comparison summary.
type ChartData struct {
	Name   string  `json:"name"`
	Energy float64 `json:"energy"`
	Unit   string  `json:"unit"`
}

// Draft is a report that has not been given an identifier yet. Identifiers are assigned
// when a draft is saved or exported. Drafts and Reports are plain values and copies never share
// state.
type Draft struct {
	Title       string       `json:"title"`
	GeneratedAt string       `json:"generatedAt"`
	ModelA      ModelDetails `json:"modelA"`
	ModelB      ModelDetails `json:"modelB"`
	ChartData   [2]ChartData `json:"chartData"`
}

// Report is a saved or exported draft.
type Report struct {
	ID string `json:"id"`
	Draft
}

// WithID stamps d with id.
func (d Draft) WithID(id string) Report {
	return Report{ID: id, Draft: d}
}

// GeneratedTime parses GeneratedAt. Reports produced by Builder always parse.
func (d Draft) GeneratedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, d.GeneratedAt)
}

// FrameworkDisplayName maps a framework id to the label used in exports. Unknown ids pass
// through unchanged; an absent framework is "N/A".
func FrameworkDisplayName(framework string) string {
	switch framework {
	case "":
		return "N/A"
	case FrameworkTensorFlow:
		return "TensorFlow"
	case FrameworkPyTorch:
		return "PyTorch"
	case FrameworkScikitLearn:
		return "scikit-learn"
	case FrameworkOther:
		return "Other/Custom"
	default:
		return framework
	}
}

// IsKnownFramework reports whether framework is empty or one of the closed set.
func IsKnownFramework(framework string) bool {
	switch framework {
	case "", FrameworkTensorFlow, FrameworkPyTorch, FrameworkScikitLearn, FrameworkOther:
		return true
	}
	return false
}
