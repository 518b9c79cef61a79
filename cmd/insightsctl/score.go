package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"startup-insights/internal/derived"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
)

func newScoreCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the health score and recommendations offline",
		Long:  "Reads form values as a JSON object keyed by field name and prints the derived metrics. No remote calls are made.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readProfile(cmd, file)
			if err != nil {
				return err
			}
			return runScore(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile JSON file, - for stdin")
	return cmd
}

type scoreResult struct {
	Validation formstate.ValidationResult `json:"validation"`
	derived.Metrics
}

func runScore(w io.Writer, values map[string]interface{}) error {
	form := formstate.New(fieldmodel.Default())
	form.SetFields(values)

	result := scoreResult{
		Validation: form.Validate(),
		Metrics:    derived.Compute(form.Snapshot(), nil),
	}
	if err := printJSON(w, result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
