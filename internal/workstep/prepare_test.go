package workstep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeDataset(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, "raw.csv")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrepareData(t *testing.T) {
	t.Run("success - splits and skips bad rows", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		raw := writeDataset(t, dir,
			"BASEBALL,the pitcher threw a curveball\n"+
				"HOCKEY,he deked past the goalie\n"+
				"BASEBALL,a walk-off home run\n"+
				"HOCKEY,power play in the third period\n"+
				",missing label\n"+
				"BASEBALL,\n"+
				"HOCKEY,overtime winner\n",
		)
		in := PrepareDataInput{
			RawPath:   raw,
			TrainPath: filepath.Join(dir, "train", "train.csv"),
			TestPath:  filepath.Join(dir, "test", "test.csv"),
			TestRatio: 0.2,
			Seed:      42,
		}

		// act
		result, err := PrepareData(in)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, 2, result.SkippedRows)
		assert.Equal(t, 1, result.TestRows)
		assert.Equal(t, 4, result.TrainRows)
		assert.Len(t, result.Labels, 2)

		train, err := os.ReadFile(in.TrainPath)
		assert.NoError(t, err)
		test, err := os.ReadFile(in.TestPath)
		assert.NoError(t, err)
		assert.NotEmpty(t, train)
		assert.NotEmpty(t, test)
	})

	t.Run("success - same seed, same split", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		raw := writeDataset(t, dir,
			"A,one\nB,two\nA,three\nB,four\nA,five\nB,six\nA,seven\nB,eight\n",
		)
		makeInput := func(sub string) PrepareDataInput {
			return PrepareDataInput{
				RawPath:   raw,
				TrainPath: filepath.Join(dir, sub, "train.csv"),
				TestPath:  filepath.Join(dir, sub, "test.csv"),
				TestRatio: 0.25,
				Seed:      7,
			}
		}

		// act
		_, err1 := PrepareData(makeInput("first"))
		_, err2 := PrepareData(makeInput("second"))

		// assert
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		first, _ := os.ReadFile(filepath.Join(dir, "first", "train.csv"))
		second, _ := os.ReadFile(filepath.Join(dir, "second", "train.csv"))
		assert.Equal(t, string(first), string(second))
	})

	t.Run("fail - dataset too small", func(t *testing.T) {
		// arrange
		dir := t.TempDir()
		raw := writeDataset(t, dir, "A,only row\n")

		// act
		_, err := PrepareData(PrepareDataInput{
			RawPath:   raw,
			TrainPath: filepath.Join(dir, "train.csv"),
			TestPath:  filepath.Join(dir, "test.csv"),
		})

		// assert
		assert.ErrorContains(t, err, "at least 2 usable rows")
	})

	t.Run("fail - missing dataset", func(t *testing.T) {
		// act
		_, err := PrepareData(PrepareDataInput{RawPath: "/nonexistent/raw.csv"})

		// assert
		assert.Error(t, err)
	})
}
