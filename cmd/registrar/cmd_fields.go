package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tum-registrar/internal/models"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List study fields with their ordinals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range models.StudyFields() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", int(f), f)
			}
			return nil
		},
	}
}
