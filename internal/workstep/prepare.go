// Package workstep implements the jobs the pipeline's processing containers
// run: dataset preparation, classifier training with evaluation, and model
// deployment. Each job reads and writes the container's fixed local paths;
// the engine moves data in and out of object storage around it.
package workstep

import (
	"encoding/csv"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type PrepareDataInput struct {
	// RawPath is the labeled dataset: two-column CSV, label then document.
	RawPath   string
	TrainPath string
	TestPath  string
	// TestRatio is the fraction of rows held out for evaluation.
	TestRatio float64
	// Seed makes the shuffle reproducible across runs.
	Seed int64
}

type PrepareDataResult struct {
	TrainRows   int
	TestRows    int
	SkippedRows int
	Labels      map[string]int
}

// PrepareData validates the raw dataset, shuffles it and splits it into the
// train and test files the classifier expects.
func PrepareData(in PrepareDataInput) (PrepareDataResult, error) {
	if in.TestRatio <= 0 || in.TestRatio >= 1 {
		in.TestRatio = 0.2
	}

	rows, skipped, err := readLabeledRows(in.RawPath)
	if err != nil {
		return PrepareDataResult{}, err
	}
	if len(rows) < 2 {
		return PrepareDataResult{}, errors.Errorf(
			"dataset %s: need at least 2 usable rows, got %d", in.RawPath, len(rows),
		)
	}

	rng := rand.New(rand.NewSource(in.Seed))
	rng.Shuffle(len(rows), func(i, k int) {
		rows[i], rows[k] = rows[k], rows[i]
	})

	testCount := int(float64(len(rows)) * in.TestRatio)
	if testCount == 0 {
		testCount = 1
	}
	testRows := rows[:testCount]
	trainRows := rows[testCount:]

	if err := writeRows(in.TrainPath, trainRows); err != nil {
		return PrepareDataResult{}, err
	}
	if err := writeRows(in.TestPath, testRows); err != nil {
		return PrepareDataResult{}, err
	}

	result := PrepareDataResult{
		TrainRows:   len(trainRows),
		TestRows:    len(testRows),
		SkippedRows: skipped,
		Labels:      map[string]int{},
	}
	for _, row := range rows {
		result.Labels[row[0]]++
	}
	log.Printf(
		"prepared dataset: %d train, %d test, %d skipped, %d labels",
		result.TrainRows, result.TestRows, result.SkippedRows, len(result.Labels),
	)
	return result, nil
}

// readLabeledRows reads label,document rows, dropping rows with a missing
// label or empty document.
func readLabeledRows(path string) ([][]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "reading dataset %s", path)
	}

	var rows [][]string
	skipped := 0
	for _, record := range records {
		if len(record) < 2 {
			skipped++
			continue
		}
		label := strings.TrimSpace(record[0])
		document := strings.TrimSpace(record[1])
		if label == "" || document == "" {
			skipped++
			continue
		}
		rows = append(rows, []string{label, document})
	}
	return rows, skipped, nil
}

func writeRows(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	writer.Flush()
	return writer.Error()
}
