package report

import (
	"fmt"
	"time"

	"github.com/aura-dashboard/backend/internal/energy"
)

// ModelInput is the metadata a user submits for one side.
type ModelInput struct {
	SelectedBaseModel string `json:"selectedBaseModel,omitempty"`
	SelectedFramework string `json:"selectedFramework,omitempty"`
	Architecture      string `json:"architecture"`
	DataSize          string `json:"dataSize"`
}

// Prediction is a completed estimator response.
type Prediction struct {
	PredictedEnergyConsumption string `json:"predictedEnergyConsumption"`
	ConfidenceLevel            string `json:"confidenceLevel"`
	VisualizationType          string `json:"visualizationType"`
}

// Side pairs a model's input with its prediction. A nil Prediction means the estimate
// has not resolved.
type Side struct {
	Input      ModelInput
	Prediction *Prediction
}

type Builder struct {
	now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderWithClock is used where GeneratedAt must be deterministic.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build assembles a draft from two resolved predictions. An empty title becomes
// "Comparison: <architectureA> vs <architectureB>".
func (b *Builder) Build(title string, a, bSide Side) (Draft, error) {
	if a.Prediction == nil || bSide.Prediction == nil {
		return Draft{}, ErrIncompleteInput
	}

	modelA := details(ModelAName, a)
	modelB := details(ModelBName, bSide)

	if title == "" {
		title = fmt.Sprintf("Comparison: %s vs %s",
			orDefault(modelA.Architecture, ModelAName),
			orDefault(modelB.Architecture, ModelBName),
		)
	}

	return Draft{
		Title:       title,
		GeneratedAt: b.now().UTC().Format(TimeLayout),
		ModelA:      modelA,
		ModelB:      modelB,
		ChartData: [2]ChartData{
			{Name: modelA.Name, Energy: modelA.ParsedEnergyValue, Unit: modelA.EnergyUnit},
			{Name: modelB.Name, Energy: modelB.ParsedEnergyValue, Unit: modelB.EnergyUnit},
		},
	}, nil
}

func details(name string, s Side) ModelDetails {
	parsed := energy.Parse(s.Prediction.PredictedEnergyConsumption)
	return ModelDetails{
		Name:                          name,
		SelectedBaseModel:             orDefault(s.Input.SelectedBaseModel, CustomBaseModel),
		SelectedFramework:             s.Input.SelectedFramework,
		Architecture:                  s.Input.Architecture,
		DataSize:                      s.Input.DataSize,
		PredictedEnergyConsumptionRaw: s.Prediction.PredictedEnergyConsumption,
		ParsedEnergyValue:             parsed.Value,
		EnergyUnit:                    parsed.Unit,
		ConfidenceLevel:               s.Prediction.ConfidenceLevel,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
