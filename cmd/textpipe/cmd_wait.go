package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jhalttu/textpipe/internal/awsml"
)

var waitFlags struct {
	arn         string
	delay       time.Duration
	maxAttempts int64
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until an execution reaches a terminal state",
	RunE:  runWait,
}

func init() {
	f := waitCmd.Flags()
	f.StringVar(&waitFlags.arn, "arn", "", "execution arn")
	f.DurationVar(&waitFlags.delay, "delay", 30*time.Second, "delay between status polls")
	f.Int64Var(&waitFlags.maxAttempts, "max-attempts", 120, "maximum status polls")

	_ = waitCmd.MarkFlagRequired("arn")
}

func runWait(cmd *cobra.Command, _ []string) error {
	client, err := newAWSClient(cmd.Context())
	if err != nil {
		return err
	}

	state, err := client.WaitForExecution(
		cmd.Context(), waitFlags.arn, waitFlags.delay, waitFlags.maxAttempts,
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "execution %s: %s\n", state.ARN, state.Status)
	if state.Status != awsml.ExecutionSucceeded {
		if state.FailureReason != "" {
			return errors.Errorf("execution failed: %s", state.FailureReason)
		}
		return errors.Errorf("execution ended in status %s", state.Status)
	}
	return nil
}
