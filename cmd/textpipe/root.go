package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/awsml"
	"github.com/jhalttu/textpipe/internal/pipeline"
	"github.com/jhalttu/textpipe/internal/settings"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	region  string
	roleARN string
}

var rootCmd = &cobra.Command{
	Use:   "textpipe",
	Short: "Manage text classification pipelines",
	Long: "Textpipe compiles YAML pipeline documents into managed pipeline\n" +
		"definitions, runs and watches executions, and reads training profiles.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	internal.InitializeConfiguration()
	settings.ReadDotenv(internal.DotEnvPath)
	settings.Settings = settings.NewSettings()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.region, "region", settings.Settings.AWSRegion, "aws region")
	pf.StringVar(
		&rootFlags.roleARN, "role-arn", settings.Settings.PipelineRoleARN,
		"execution role for compiled pipeline steps",
	)

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(definitionCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.Version = version
}

func newAWSClient(ctx context.Context) (*awsml.Client, error) {
	return awsml.New(ctx, awsml.WithRegion(rootFlags.region))
}

// compileSpecFile parses and validates a pipeline document and compiles it
// into a definition the engine accepts.
func compileSpecFile(path string) (*pipeline.Pipeline, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.ParseSpec(data)
	if err != nil {
		return nil, nil, err
	}
	definition, err := p.Definition(pipeline.CompileOptions{RoleARN: rootFlags.roleARN})
	if err != nil {
		return nil, nil, err
	}
	return p, definition, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
