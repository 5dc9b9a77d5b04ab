package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-dashboard/backend/internal/llm"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/service"
	"github.com/aura-dashboard/backend/pkg/config"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type tableEstimator map[string]string

func (t tableEstimator) PredictEnergy(_ context.Context, in llm.EnergyPredictionInput) (*llm.EnergyPrediction, error) {
	return &llm.EnergyPrediction{PredictedEnergyConsumption: t[in.ModelArchitecture], ConfidenceLevel: "high", VisualizationType: "bar chart"}, nil
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AURA_STORAGE_DRIVER", "sqlite")
	t.Setenv("AURA_SQLITE_PATH", filepath.Join(t.TempDir(), "aura.db"))

	color.NoColor = true

	prev := logger.Log
	t.Cleanup(func() { logger.SetLogger(prev) })
}

type fixedIDs struct {
	n int
}

func (f *fixedIDs) Next() string {
	f.n++
	return fmt.Sprintf("cli-%d", f.n)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, nil, args...)
}

func runWith(t *testing.T, opts []service.Option, args ...string) (string, error) {
	t.Helper()
	est := tableEstimator{"CNN": "120 kWh", "Transformer": "480 kWh"}
	root := NewRootCmd(func(ctx context.Context, cfg *config.Config) (*service.Services, error) {
		return service.New(ctx, cfg, est, opts...)
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exportedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCompareSaveAndExport(t *testing.T) {
	setupEnv(t)
	outDir := t.TempDir()

	out, err := run(t, "compare",
		"--a-arch", "CNN", "--a-data", "1GB",
		"--b-arch", "Transformer", "--b-data", "10GB",
		"--save", "--export", "csv", "-o", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "Comparison: CNN vs Transformer")
	assert.Contains(t, out, "120 kWh")
	assert.Contains(t, out, "Model B uses more energy")
	assert.Contains(t, out, "Saved report ")
	assert.Contains(t, out, "Exported ")

	files := exportedFiles(t, outDir)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0], "aura_model_comparison_report_"))
	assert.True(t, strings.HasSuffix(files[0], ".csv"))

	body, err := os.ReadFile(filepath.Join(outDir, files[0]))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Model A,120,kWh")

	out, err = run(t, "reports", "list", "--json")
	require.NoError(t, err)
	var all []report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 1)
	assert.Equal(t, "Comparison: CNN vs Transformer", all[0].Title)
	assert.Contains(t, string(body), "Report ID,"+all[0].ID)
}

func TestCompareExportWithoutSaveUsesInjectedIDs(t *testing.T) {
	setupEnv(t)
	outDir := t.TempDir()
	ids := &fixedIDs{}

	out, err := runWith(t, []service.Option{service.WithIDs(ids)}, "compare",
		"--a-arch", "CNN", "--a-data", "1GB",
		"--b-arch", "Transformer", "--b-data", "10GB",
		"--export", "json", "-o", outDir)
	require.NoError(t, err)
	assert.NotContains(t, out, "Saved report")

	files := exportedFiles(t, outDir)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(outDir, files[0]))
	require.NoError(t, err)
	exported, err := report.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "cli-1", exported.ID)

	out, err = run(t, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved reports")
}

func TestReportsExportAndClear(t *testing.T) {
	setupEnv(t)
	outDir := t.TempDir()

	_, err := run(t, "compare", "--a-arch", "CNN", "--a-data", "1GB", "--b-arch", "Transformer", "--b-data", "10GB", "--save")
	require.NoError(t, err)

	out, err := run(t, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "480 kWh")

	out, err = run(t, "reports", "list", "--json")
	require.NoError(t, err)
	var all []report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 1)
	id := all[0].ID

	_, err = run(t, "reports", "export", id, "--format", "json", "-o", outDir)
	require.NoError(t, err)
	_, err = run(t, "reports", "export", id, "--format", "json", "-o", outDir)
	require.NoError(t, err)

	files := exportedFiles(t, outDir)
	require.Len(t, files, 2)
	data, err := os.ReadFile(filepath.Join(outDir, files[0]))
	require.NoError(t, err)
	exported, err := report.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, all[0], exported)

	_, err = run(t, "reports", "export", "missing")
	assert.ErrorContains(t, err, `report "missing" not found`)

	out, err = run(t, "reports", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved reports cleared")

	out, err = run(t, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved reports")
}

func TestCompareArgumentErrors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "compare", "--a-arch", "CNN", "--b-arch", "Transformer", "--b-data", "10GB")
	assert.ErrorContains(t, err, "a-data")

	_, err = run(t, "compare", "--a-arch", "CNN", "--a-data", "1GB", "--b-arch", "Transformer", "--b-data", "10GB", "--export", "xml")
	assert.ErrorIs(t, err, report.ErrUnknownFormat)

	_, err = run(t, "compare", "--a-arch", "NN", "--a-data", "1GB", "--b-arch", "Transformer", "--b-data", "10GB")
	assert.ErrorContains(t, err, "failed to compare models")
}

func TestNextFreePath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "report.csv")

	got, err := nextFreePath(base)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	require.NoError(t, os.WriteFile(base, nil, 0o644))
	require.NoError(t, os.WriteFile(base+".1", nil, 0o644))

	got, err = nextFreePath(base)
	require.NoError(t, err)
	assert.Equal(t, base+".2", got)
}
