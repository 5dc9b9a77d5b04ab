package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/service"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		sub          comparison.Submission
		save         bool
		exportFormat string
		outDir       string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Estimate and compare the energy use of two models",
		Long: `Sends both model descriptions to the estimator at the same time and prints the
resulting comparison. Nothing is kept unless --save or --export is given.`,
		Example: `  # Two hand-described models
  aura compare --a-arch CNN --a-data 1GB --b-arch Transformer --b-data 10GB

  # Start from a preset, save the result and write a CSV next to it
  aura compare --a-model resnet50 --a-data ImageNet --b-model bert-base --b-data 3GB --save --export csv -o ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var format report.Format
			if exportFormat != "" {
				f, err := report.ParseFormat(exportFormat)
				if err != nil {
					return err
				}
				format = f
			}

			return a.withServices(cmd, func(ctx context.Context, svc *service.Services) error {
				draft, err := svc.Orchestrator.Submit(ctx, sub)
				if err != nil {
					return fmt.Errorf("failed to compare models: %w", err)
				}

				out := cmd.OutOrStdout()
				printDraft(out, draft)

				var r report.Report
				if save {
					r, err = svc.Store.Append(ctx, draft)
					if err != nil {
						return fmt.Errorf("failed to save report: %w", err)
					}
					fmt.Fprintf(out, "\nSaved report %s\n", r.ID)
				} else {
					r = draft.WithID(svc.IDs.Next())
				}

				if format != "" {
					path, err := writeExport(svc.Exporter, r, format, outDir)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Exported %s\n", path)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sub.Title, "title", "", "report title (default \"Comparison: <A> vs <B>\")")
	flags.StringVar(&sub.ModelA.Architecture, "a-arch", "", "architecture of model A")
	flags.StringVar(&sub.ModelA.DataSize, "a-data", "", "data size processed by model A")
	flags.StringVar(&sub.ModelA.SelectedBaseModel, "a-model", "", "preset base model id for model A")
	flags.StringVar(&sub.ModelA.SelectedFramework, "a-framework", "", "framework of model A (tensorflow, pytorch, scikit-learn, other)")
	flags.StringVar(&sub.ModelB.Architecture, "b-arch", "", "architecture of model B")
	flags.StringVar(&sub.ModelB.DataSize, "b-data", "", "data size processed by model B")
	flags.StringVar(&sub.ModelB.SelectedBaseModel, "b-model", "", "preset base model id for model B")
	flags.StringVar(&sub.ModelB.SelectedFramework, "b-framework", "", "framework of model B (tensorflow, pytorch, scikit-learn, other)")
	flags.BoolVar(&save, "save", false, "append the result to the saved reports")
	flags.StringVar(&exportFormat, "export", "", "write the result as csv or json")
	flags.StringVarP(&outDir, "out", "o", ".", "directory for exported files")

	_ = cmd.MarkFlagRequired("a-data")
	_ = cmd.MarkFlagRequired("b-data")

	return cmd
}
