package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/service"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage saved comparison reports",
	}
	cmd.AddCommand(newReportsListCmd(a), newReportsExportCmd(a), newReportsClearCmd(a))
	return cmd
}

func newReportsListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports in the order they were saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(ctx context.Context, svc *service.Services) error {
				all, err := svc.Store.LoadAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to load reports: %w", err)
				}

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(all)
				}
				printReportList(out, all)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the collection as JSON")
	return cmd
}

func newReportsExportCmd(a *app) *cobra.Command {
	var (
		formatFlag string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved report to a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			return a.withServices(cmd, func(ctx context.Context, svc *service.Services) error {
				all, err := svc.Store.LoadAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to load reports: %w", err)
				}

				for _, r := range all {
					if r.ID != args[0] {
						continue
					}
					path, err := writeExport(svc.Exporter, r, format, outDir)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
					return nil
				}
				return fmt.Errorf("report %q not found", args[0])
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(report.FormatCSV), "csv or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the exported file")
	return cmd
}

func newReportsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(ctx context.Context, svc *service.Services) error {
				if err := svc.Store.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear reports: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Saved reports cleared")
				return nil
			})
		},
	}
}
