package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"startup-insights/internal/common/config"
	"startup-insights/internal/investor"
	"startup-insights/internal/models"
	"startup-insights/internal/predictionapi"
)

func newStartupsCmd() *cobra.Command {
	var q investor.Query
	var debug, asJSON bool
	cmd := &cobra.Command{
		Use:   "startups",
		Short: "List startups known to the prediction service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger()
			client := predictionapi.NewClient(predictionapi.Config{
				BaseURL: cfg.PredictionAPI.BaseURL,
				Timeout: config.GetDuration(cfg.PredictionAPI.Timeout),
			}, nil, log)

			var opts []investor.Option
			if debug {
				opts = append(opts, investor.WithDebugEndpoint())
			}
			svc := investor.NewService(client, log, opts...)

			result, err := svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return writeListings(cmd.OutOrStdout(), result.Listings)
		},
	}
	cmd.Flags().StringVar(&q.Text, "text", "", "free text over name, industry and location")
	cmd.Flags().StringVar(&q.Industry, "industry", "", "industry filter")
	cmd.Flags().StringVar(&q.Location, "location", "", "location filter")
	cmd.Flags().StringVar(&q.InvestmentStage, "stage", "", "investment stage filter")
	cmd.Flags().StringVar(&q.Prediction, "prediction", "", "prediction label filter")
	cmd.Flags().IntVar(&q.Size, "limit", 50, "maximum rows")
	cmd.Flags().BoolVar(&debug, "debug", false, "use the debug listing endpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeListings(w io.Writer, listings []models.StartupListing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOGO\tNAME\tINDUSTRY\tLOCATION\tSTAGE\tPREDICTION")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Logo, l.Name, l.Industry, l.Location, l.InvestmentStage, l.Prediction)
	}
	return tw.Flush()
}
