package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quakes.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSelectsColumnsByName(t *testing.T) {
	path := writeCSV(t, "title,depth,magnitude,tsunami,alert\n"+
		"a,10.5,7.1,1,green\n"+
		"b,33,6.5,0,\n")

	ds, err := NewCSVReader(path).Load([]string{"magnitude", "alert", "depth"}, "tsunami")
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"magnitude", "alert", "depth"}, ds.Features)
	assert.Equal(t, [][]string{{"7.1", "green", "10.5"}, {"6.5", "", "33"}}, ds.X)
	assert.Equal(t, []string{"1", "0"}, ds.Y)
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeCSV(t, "magnitude,tsunami\n7.0,1\n")

	_, err := NewCSVReader(path).Load([]string{"magnitude", "cdi"}, "tsunami")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "cdi")

	_, err = NewCSVReader(path).Load([]string{"magnitude"}, "label")
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "absent.csv")).Load([]string{"a"}, "b")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeCSV(t, "magnitude,tsunami\n")
	_, err := NewCSVReader(path).Load([]string{"magnitude"}, "tsunami")
	require.Error(t, err)
}

func TestValidateBinaryLabels(t *testing.T) {
	dv := NewDataValidator()

	counts, err := dv.ValidateBinaryLabels([]int{1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []ClassCount{{Class: 0, Count: 1}, {Class: 1, Count: 3}}, counts)

	counts, err = dv.ValidateBinaryLabels([]int{0, 0, 0})
	require.ErrorIs(t, err, ErrDegenerateTarget)
	assert.Equal(t, []ClassCount{{Class: 0, Count: 3}}, counts)

	_, err = dv.ValidateBinaryLabels([]int{0, 1, 2})
	require.ErrorIs(t, err, ErrNotBinary)
}

func TestValidateDataset(t *testing.T) {
	dv := NewDataValidator()
	require.NoError(t, dv.ValidateDataset([][]string{{"1", "2"}, {"3", "4"}}, []string{"0", "1"}))
	require.Error(t, dv.ValidateDataset(nil, nil))
	require.Error(t, dv.ValidateDataset([][]string{{"1"}}, []string{"0", "1"}))
	require.Error(t, dv.ValidateDataset([][]string{{"1", "2"}, {"3"}}, []string{"0", "1"}))
}
