package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"startup-insights/internal/common/config"
	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
	"startup-insights/internal/predictionapi"
	"startup-insights/internal/report"
)

func newAnalyzeCmd() *cobra.Command {
	var file, peer, format string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run prediction and peer comparison against the prediction service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readProfile(cmd, file)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger()
			client := predictionapi.NewClient(predictionapi.Config{
				BaseURL: cfg.PredictionAPI.BaseURL,
				Timeout: config.GetDuration(cfg.PredictionAPI.Timeout),
			}, nil, log)
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), client, values, peer, format, log)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile JSON file, - for stdin")
	cmd.Flags().StringVar(&peer, "peer", "", "similar startup to compare against once the report is ready")
	cmd.Flags().StringVarP(&format, "output", "o", "md", "report format: md, html or json")
	return cmd
}

// runAnalyze drives one submission cycle and prints the resulting report.
// Remote failures are part of the report, so only validation and output
// errors are returned.
func runAnalyze(ctx context.Context, w io.Writer, svc predictionapi.Service, values map[string]interface{}, peer, format string, log logger.Logger) error {
	form := formstate.New(fieldmodel.Default())
	form.SetFields(values)

	view := report.NewViewModel()
	view.RecomputeDerived(form.Snapshot())
	coord := coordinator.New(svc, view, log)

	if err := coord.SubmitForm(ctx, form); err != nil {
		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Errorf("profile is incomplete: %s", strings.Join(vErr.Fields(), ", "))
		}
	}

	if peer = strings.TrimSpace(peer); peer != "" && coord.HasPrediction() {
		_ = coord.SelectPeer(ctx, peer)
	}

	return writeReport(w, view.Snapshot(), format)
}

func writeReport(w io.Writer, state report.State, format string) error {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		_, err := io.WriteString(w, report.RenderMarkdown(state))
		return err
	case "html":
		html, err := report.RenderHTML(state)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "json":
		return printJSON(w, state)
	}
	return fmt.Errorf("unknown output format %q", format)
}
