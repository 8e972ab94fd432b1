package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/logger"
)

func newExportCmd() *cobra.Command {
	var req service.ExportRequest
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a roster to EXPORTS_DIR as csv, pdf or yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logr, err := logger.NewConsole(verbose)
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			a, err := newApp(cmd.Context(), cfg, logr)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			result, err := a.exports.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", result.Path, result.Rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Format, "format", "f", service.ExportFormatCSV, "csv, pdf or yaml")
	cmd.Flags().StringVar(&req.Faculty, "faculty", "", "faculty abbreviation or name (default all)")
	cmd.Flags().BoolVar(&req.Graduates, "graduates", false, "export graduates instead of enrolled students")
	return cmd
}
