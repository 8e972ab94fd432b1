package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tum-registrar/internal/console"
	"github.com/noah-isme/tum-registrar/pkg/logger"
)

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive console (default)",
		Long: `Start the interactive console. Commands are slash delimited, for example

  nf/Computer Science/CS/SOFTWARE_ENGINEERING
  ns/CS/Ana/Pop/ana@x.ro/2/1/2000
  gs/ana@x.ro

Type help inside the console for the full list, q to save and quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logr, err := logger.NewConsole(verbose)
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	stopAutosave := a.startAutosave(ctx)
	defer stopAutosave()

	repl := console.NewREPL(a.registry, cmd.InOrStdin(), cmd.OutOrStdout(), logr.Named("console"))
	return repl.Run(ctx)
}
