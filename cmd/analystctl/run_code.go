package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRunCodeCmd(build runnerBuilder) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "run-code [-]",
		Short: "Run a script with the configured interpreter and print the execution result",
		Long: "Reads the script from --file, or from stdin when no file is given, runs it " +
			"with a wall-clock timeout and prints {stdout, stderr, returncode} or {error}.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] != "-" {
				return fmt.Errorf("unexpected argument %q; use --file or pipe the script on stdin", args[0])
			}

			var code []byte
			var err error
			if filePath != "" && filePath != "-" {
				code, err = os.ReadFile(filePath)
			} else {
				code, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			runner, err := build()
			if err != nil {
				return err
			}

			res := runner.Run(cmd.Context(), string(code))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "script path; stdin when empty or -")
	return cmd
}
