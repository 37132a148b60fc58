package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhalttu/textpipe/internal/service"
)

var profileFlags struct {
	trainingJob   string
	out           string
	bins          int
	bucketSeconds int64
	dimensions    []string
	busiest       int
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Fetch and aggregate a training job's profiling data",
	RunE:  runProfile,
}

func init() {
	f := profileCmd.Flags()
	f.StringVar(&profileFlags.trainingJob, "training-job", "", "training job name")
	f.StringVarP(&profileFlags.out, "out", "o", "", "write the report to a file instead of stdout")
	f.IntVar(&profileFlags.bins, "bins", 0, "histogram bin count")
	f.Int64Var(&profileFlags.bucketSeconds, "bucket-seconds", 0, "heatmap bucket width in seconds")
	f.StringArrayVar(
		&profileFlags.dimensions, "dimension", nil,
		"system metric dimension filter (repeatable)",
	)
	f.IntVar(&profileFlags.busiest, "busiest", 10, "number of longest framework spans to keep")

	_ = profileCmd.MarkFlagRequired("training-job")
}

type profileReport struct {
	System    *service.SystemProfile    `json:"system,omitempty"`
	Framework *service.FrameworkProfile `json:"framework,omitempty"`
}

func runProfile(cmd *cobra.Command, _ []string) error {
	client, err := newAWSClient(cmd.Context())
	if err != nil {
		return err
	}
	profileSvc := service.NewProfileService(client)

	report := profileReport{}
	report.System, err = profileSvc.SystemProfile(
		cmd.Context(),
		profileFlags.trainingJob,
		profileFlags.bins,
		time.Duration(profileFlags.bucketSeconds)*time.Second,
		profileFlags.dimensions...,
	)
	if err != nil {
		return err
	}
	report.Framework, err = profileSvc.FrameworkProfile(
		cmd.Context(), profileFlags.trainingJob, profileFlags.busiest,
	)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if profileFlags.out != "" {
		return os.WriteFile(profileFlags.out, data, 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
