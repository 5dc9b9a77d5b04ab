package report

import (
	"encoding/json"
	"fmt"
)

// ToJSON renders d stamped with id as a 2-space indented document.
func ToJSON(d Draft, id string) (string, error) {
	data, err := json.MarshalIndent(d.WithID(id), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}

// FromJSON decodes a document produced by ToJSON.
func FromJSON(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}
