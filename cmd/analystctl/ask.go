package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"analyst-backend/internal/analysis"
	"analyst-backend/internal/shared/apierr"
)

func newAskCmd(build appBuilder) *cobra.Command {
	var filePath, question string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Analyze a .txt file with a question and print the JSON response",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filePath, err)
			}
			app, err := build()
			if err != nil {
				return err
			}
			defer app.Close()

			outcome, err := app.AnalysisService.Analyze(cmd.Context(), analysis.Request{
				FileName: filepath.Base(filePath),
				Data:     data,
				Question: question,
			})
			var body any
			if err != nil {
				body = map[string]string{"error": apierr.From(err).Error()}
			} else {
				body = map[string]any{"result": outcome.Result()}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(body); encErr != nil {
				return encErr
			}
			if err != nil && apierr.From(err).Kind != apierr.KindUpstream {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the .txt data file")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the data")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
