package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// Dataset holds the selected raw columns of the input file. Values are kept
// as read; numeric coercion belongs to preprocessing.
type Dataset struct {
	Features []string
	Target   string
	X        [][]string
	Y        []string
	Source   string
}

func (ds *Dataset) Len() int {
	return len(ds.Y)
}

type CSVReader struct {
	filename string
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename}
}

// Load reads the whole file and keeps the named feature columns, in the order
// given, plus the target column.
func (cr *CSVReader) Load(features []string, target string) (*Dataset, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", cr.filename, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in file %s", cr.filename)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	featureCols := make([]int, len(features))
	for j, name := range features {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: feature %q", ErrMissingColumn, name)
		}
		featureCols[j] = col
	}
	targetCol, ok := index[target]
	if !ok {
		return nil, fmt.Errorf("%w: target %q", ErrMissingColumn, target)
	}

	rows := records[1:]
	ds := &Dataset{
		Features: append([]string(nil), features...),
		Target:   target,
		X:        make([][]string, len(rows)),
		Y:        make([]string, len(rows)),
		Source:   cr.filename,
	}

	for i, record := range rows {
		ds.X[i] = make([]string, len(featureCols))
		for j, col := range featureCols {
			ds.X[i][j] = field(record, col)
		}
		ds.Y[i] = field(record, targetCol)
	}

	return ds, nil
}

// field tolerates short rows; a missing cell reads as empty.
func field(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return record[col]
}
