package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tum-registrar/api/swagger"
	"github.com/noah-isme/tum-registrar/pkg/config"
)

// @title TUM Registrar API
// @version 1.0.0
// @description Faculties, study fields, enrolled students and graduates
// @BasePath /api/v1
// @schemes http

var (
	statePath string
	verbose   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "registrar",
		Short: "Academic records for faculties, study fields and students",
		Long: `registrar keeps faculties, their study fields, enrolled students and graduates.

Run without arguments to start the interactive console. State is loaded on start
and saved when the console exits or the server shuts down.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd)
		},
	}
	root.PersistentFlags().StringVar(&statePath, "state", "", "state file path (overrides STATE_FILE)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newREPLCmd(), newServeCmd(), newExportCmd(), newFieldsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies command line overrides on top of the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if statePath != "" {
		cfg.State.Driver = config.StateDriverFile
		cfg.State.File = statePath
	}
	if verbose {
		cfg.Log.Level = zap.DebugLevel.String()
	}
	return cfg, nil
}
