package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/pkg/logger"
)

type EnergyPredictionInput struct {
	ModelArchitecture string `json:"modelArchitecture"`
	DataSize          string `json:"dataSize"`
}

type EnergyPrediction struct {
	PredictedEnergyConsumption string `json:"predictedEnergyConsumption"`
	VisualizationType          string `json:"visualizationType"`
	ConfidenceLevel            string `json:"confidenceLevel"`
}

const energySystemPrompt = `You are an expert in AI model energy consumption prediction.

You will receive the AI model's architecture and the size of the data it processes.
Based on this information, you will predict the energy consumption of the model, suggest a visualization type to represent the results, and provide a confidence level for the prediction.

Respond in a JSON format with the following keys:
- predictedEnergyConsumption: The predicted energy consumption of the AI model, a number followed by its unit (e.g. "150 kWh").
- visualizationType: A suitable visualization type for the predicted energy consumption (e.g. bar chart, pie chart).
- confidenceLevel: The confidence level of the prediction (high, medium or low).`

// PredictEnergy asks the model for a free-text energy estimate of one architecture.
func (c *Client) PredictEnergy(ctx context.Context, in EnergyPredictionInput) (*EnergyPrediction, error) {
	userPrompt := fmt.Sprintf("Model Architecture: %s\nData Size: %s", in.ModelArchitecture, in.DataSize)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: energySystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    300,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to predict energy consumption: %w", err)
	}

	prediction, err := parseEnergyPrediction(resp.Content)
	if err != nil {
		return nil, err
	}

	logger.Info("Energy predicted",
		zap.String("architecture", in.ModelArchitecture),
		zap.String("data_size", in.DataSize),
		zap.String("prediction", prediction.PredictedEnergyConsumption),
		zap.String("confidence", prediction.ConfidenceLevel),
	)

	return prediction, nil
}

func parseEnergyPrediction(content string) (*EnergyPrediction, error) {
	body := strings.TrimSpace(content)
	if start, end := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}'); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var p EnergyPrediction
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("failed to decode energy prediction: %w", err)
	}
	if strings.TrimSpace(p.PredictedEnergyConsumption) == "" {
		return nil, errors.New("energy prediction is missing predictedEnergyConsumption")
	}
	return &p, nil
}
