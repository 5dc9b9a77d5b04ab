package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/aura-dashboard/backend/internal/report"
)

var (
	heading = color.New(color.Bold).SprintFunc()
	dimmed  = color.New(color.Faint).SprintFunc()
	highest = color.New(color.FgYellow).SprintFunc()
)

func printDraft(w io.Writer, d report.Draft) {
	fmt.Fprintln(w, heading(d.Title))
	fmt.Fprintln(w, dimmed("Generated "+d.GeneratedAt))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\t%s\n", d.ModelA.Name, d.ModelB.Name)
	fmt.Fprintf(tw, "Base model\t%s\t%s\n", d.ModelA.SelectedBaseModel, d.ModelB.SelectedBaseModel)
	fmt.Fprintf(tw, "Framework\t%s\t%s\n", report.FrameworkDisplayName(d.ModelA.SelectedFramework), report.FrameworkDisplayName(d.ModelB.SelectedFramework))
	fmt.Fprintf(tw, "Architecture\t%s\t%s\n", d.ModelA.Architecture, d.ModelB.Architecture)
	fmt.Fprintf(tw, "Data size\t%s\t%s\n", d.ModelA.DataSize, d.ModelB.DataSize)
	fmt.Fprintf(tw, "Prediction\t%s\t%s\n", d.ModelA.PredictedEnergyConsumptionRaw, d.ModelB.PredictedEnergyConsumptionRaw)
	fmt.Fprintf(tw, "Energy\t%s\t%s\n", energyCell(d.ChartData[0]), energyCell(d.ChartData[1]))
	fmt.Fprintf(tw, "Confidence\t%s\t%s\n", d.ModelA.ConfidenceLevel, d.ModelB.ConfidenceLevel)
	tw.Flush()

	if a, b := d.ChartData[0], d.ChartData[1]; a.Unit == b.Unit && a.Energy != b.Energy {
		hungrier := a
		if b.Energy > a.Energy {
			hungrier = b
		}
		fmt.Fprintf(w, "\n%s uses more energy\n", highest(hungrier.Name))
	}
}

func printReportList(w io.Writer, all []report.Report) {
	if len(all) == 0 {
		fmt.Fprintln(w, "No saved reports")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGENERATED\tTITLE\tMODEL A\tMODEL B")
	for _, r := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.GeneratedAt, r.Title, energyCell(r.ChartData[0]), energyCell(r.ChartData[1]))
	}
	tw.Flush()
}

func energyCell(cd report.ChartData) string {
	return strconv.FormatFloat(cd.Energy, 'f', -1, 64) + " " + cd.Unit
}

// writeExport writes r into dir. An existing file with the same name is kept and the new
// one gets a numeric suffix (name.csv.1, name.csv.2, ...).
func writeExport(exporter *report.Exporter, r report.Report, format report.Format, dir string) (string, error) {
	exp, err := exporter.Export(r, format)
	if err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path, err := nextFreePath(filepath.Join(dir, exp.Filename))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, exp.Body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func nextFreePath(path string) (string, error) {
	candidate := path
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		candidate = path + "." + strconv.Itoa(i)
	}
}
