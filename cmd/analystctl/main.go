// Command analystctl runs the analysis pipeline and the code executor from a
// terminal without starting the HTTP server.
//
// Usage:
//
//	analystctl ask --file data.txt --question "Which region sold most?"
//	analystctl run-code --file script.py
//	echo 'print(1)' | analystctl run-code
package main

import (
	"os"

	"github.com/spf13/cobra"

	"analyst-backend/internal/bootstrap"
	"analyst-backend/internal/executor"
	"analyst-backend/internal/shared/config"
	"analyst-backend/internal/shared/telemetry"
)

// appBuilder loads configuration and wires the application. Tests replace it.
type appBuilder func() (*bootstrap.App, error)

func defaultBuilder() (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	telemetry.Init(cfg.LogLevel)
	return bootstrap.Build(cfg)
}

// runnerBuilder loads configuration and builds only the code executor.
type runnerBuilder func() (*executor.Executor, error)

func defaultRunner() (*executor.Executor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	telemetry.Init(cfg.LogLevel)
	return bootstrap.NewExecutor(cfg), nil
}

func newRootCmd(build appBuilder, runner runnerBuilder) *cobra.Command {
	root := &cobra.Command{
		Use:          "analystctl",
		Short:        "Operator CLI for the data analyst backend",
		SilenceUsage: true,
	}
	root.AddCommand(newAskCmd(build), newRunCodeCmd(runner))
	return root
}

func main() {
	defer telemetry.Sync()
	if err := newRootCmd(defaultBuilder, defaultRunner).Execute(); err != nil {
		os.Exit(1)
	}
}
