package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/jhalttu/textpipe/internal"
	"github.com/jhalttu/textpipe/internal/workstep"
)

func main() {
	rawPath := flag.String(
		"raw", filepath.Join(internal.ProcessingInputDir, "dataset.csv"),
		"labeled dataset, two-column CSV (label, document)",
	)
	trainPath := flag.String(
		"train", filepath.Join(internal.ProcessingTrainDir, "train.csv"),
		"output path for the training split",
	)
	testPath := flag.String(
		"test", filepath.Join(internal.ProcessingTestDir, "test.csv"),
		"output path for the evaluation split",
	)
	testRatio := flag.Float64("test-ratio", 0.2, "fraction of rows held out for evaluation")
	seed := flag.Int64("seed", time.Now().UnixNano(), "shuffle seed")
	flag.Parse()

	result, err := workstep.PrepareData(workstep.PrepareDataInput{
		RawPath:   *rawPath,
		TrainPath: *trainPath,
		TestPath:  *testPath,
		TestRatio: *testRatio,
		Seed:      *seed,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("done: %d train rows, %d test rows", result.TrainRows, result.TestRows)
}
