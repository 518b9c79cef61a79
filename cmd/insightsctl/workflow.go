package main

import (
	"time"

	"github.com/spf13/cobra"

	"startup-insights/internal/common/camunda"
	"startup-insights/internal/common/config"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
	"startup-insights/pkg/registry"
)

func newWorkflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Interact with the analysis process on Zeebe",
	}
	cmd.AddCommand(newWorkflowStartCmd(), newWorkflowActivitiesCmd())
	return cmd
}

func newWorkflowStartCmd() *cobra.Command {
	var file, processID string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an analysis process instance for a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readProfile(cmd, file)
			if err != nil {
				return err
			}
			form := formstate.New(fieldmodel.Default())
			form.SetFields(values)
			profile, err := form.ToWireFormat()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			if err != nil {
				return err
			}
			defer client.Close()

			instance, err := client.StartAnalysis(cmd.Context(), processID, profile)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), instance)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile JSON file, - for stdin")
	cmd.Flags().StringVar(&processID, "process", camunda.AnalysisProcessID, "BPMN process id")
	return cmd
}

func newWorkflowActivitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "Print the job workers of the analysis process and their variables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), registry.Analysis())
		},
	}
}
