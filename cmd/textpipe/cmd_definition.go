package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var definitionFlags struct {
	file string
}

var definitionCmd = &cobra.Command{
	Use:   "definition",
	Short: "Compile a pipeline document and print the definition JSON",
	RunE:  runDefinition,
}

func init() {
	f := definitionCmd.Flags()
	f.StringVarP(&definitionFlags.file, "file", "f", "", "pipeline document (YAML)")

	_ = definitionCmd.MarkFlagRequired("file")
}

func runDefinition(cmd *cobra.Command, _ []string) error {
	_, definition, err := compileSpecFile(definitionFlags.file)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(definition))
	return nil
}
