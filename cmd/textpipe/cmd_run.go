package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runFlags struct {
	name        string
	displayName string
	params      []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an execution of a registered pipeline",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.name, "name", "", "pipeline name")
	f.StringVar(&runFlags.displayName, "display-name", "", "execution display name")
	f.StringArrayVarP(
		&runFlags.params, "param", "p", nil, "pipeline parameter as name=value (repeatable)",
	)

	_ = runCmd.MarkFlagRequired("name")
}

func runRun(cmd *cobra.Command, _ []string) error {
	params := map[string]string{}
	for _, pair := range runFlags.params {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return errors.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}

	client, err := newAWSClient(cmd.Context())
	if err != nil {
		return err
	}
	arn, err := client.StartExecution(
		cmd.Context(), runFlags.name, runFlags.displayName, params,
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), arn)
	return nil
}
