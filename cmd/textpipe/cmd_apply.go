package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var applyFlags struct {
	file string
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compile a pipeline document and create or update the remote pipeline",
	RunE:  runApply,
}

func init() {
	f := applyCmd.Flags()
	f.StringVarP(&applyFlags.file, "file", "f", "", "pipeline document (YAML)")

	_ = applyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, _ []string) error {
	p, definition, err := compileSpecFile(applyFlags.file)
	if err != nil {
		return err
	}

	client, err := newAWSClient(cmd.Context())
	if err != nil {
		return err
	}
	arn, err := client.UpsertPipeline(cmd.Context(), p.Name, rootFlags.roleARN, definition)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pipeline %s registered as %s\n", p.Name, arn)
	return nil
}
