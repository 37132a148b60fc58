package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusFlags struct {
	arn string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state and step list of an execution",
	RunE:  runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusFlags.arn, "arn", "", "execution arn")

	_ = statusCmd.MarkFlagRequired("arn")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := newAWSClient(cmd.Context())
	if err != nil {
		return err
	}

	state, err := client.DescribeExecution(cmd.Context(), statusFlags.arn)
	if err != nil {
		return err
	}
	steps, err := client.ListExecutionSteps(cmd.Context(), statusFlags.arn)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Execution: %s\n", state.ARN)
	fmt.Fprintf(out, "Status:    %s\n", state.Status)
	if state.FailureReason != "" {
		fmt.Fprintf(out, "Failure:   %s\n", state.FailureReason)
	}
	if len(steps) > 0 {
		fmt.Fprintf(out, "Steps:\n")
		for _, s := range steps {
			fmt.Fprintf(out, "  %-24s %-10s %s\n", s.Name, s.Status, stepWindow(s.StartedAt, s.EndedAt))
			if s.FailureReason != "" {
				fmt.Fprintf(out, "    %s\n", s.FailureReason)
			}
		}
	}
	return nil
}

func stepWindow(started, ended *time.Time) string {
	if started == nil {
		return ""
	}
	if ended == nil {
		return started.Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"%s (%s)", started.Format(time.RFC3339), ended.Sub(*started).Round(time.Second),
	)
}
