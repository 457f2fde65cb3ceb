// Package simulator replays flows from a labelled CSV capture against the
// prediction endpoint.
package simulator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cyberguard/ml"
)

const LabelColumn = "Label"

var (
	ErrEmptySample = errors.New("sample has no usable rows")
	ErrNoAttacks   = errors.New("no attack examples in this sample")
	ErrNoLabel     = errors.New("label column missing")
)

type Row struct {
	Label    string
	Features ml.FeatureMap
}

type Sample struct {
	Columns  []string
	Rows     []Row
	HasLabel bool
	Dropped  int
}

// LoadSample reads a capture file. Header names are trimmed, a UTF-8 BOM is
// tolerated and rows with an empty, NaN or infinite numeric cell are dropped.
func LoadSample(path string) (*Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSample(file)
}

func ReadSample(r io.Reader) (*Sample, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	sample := &Sample{Columns: make([]string, len(header))}
	labelIdx := -1
	for i, name := range header {
		sample.Columns[i] = strings.TrimSpace(name)
		if sample.Columns[i] == LabelColumn {
			labelIdx = i
		}
	}
	sample.HasLabel = labelIdx >= 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(sample.Rows)+sample.Dropped+1, err)
		}
		row, ok := parseRow(sample.Columns, record, labelIdx)
		if !ok {
			sample.Dropped++
			continue
		}
		sample.Rows = append(sample.Rows, row)
	}
	if len(sample.Rows) == 0 {
		return nil, ErrEmptySample
	}
	return sample, nil
}

func parseRow(columns, record []string, labelIdx int) (Row, bool) {
	row := Row{Features: make(ml.FeatureMap, len(columns))}
	for i, name := range columns {
		cell := strings.TrimSpace(record[i])
		if i == labelIdx {
			if cell == "" {
				return Row{}, false
			}
			row.Label = cell
			continue
		}
		if cell == "" {
			return Row{}, false
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			if isNumericRangeError(err) {
				return Row{}, false
			}
			row.Features[name] = ml.TextValue(cell)
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Row{}, false
		}
		row.Features[name] = ml.NumberValue(f)
	}
	return row, true
}

func isNumericRangeError(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)
}

// Random picks any row.
func (s *Sample) Random(rng *rand.Rand) Row {
	return s.Rows[rng.Intn(len(s.Rows))]
}

// Attack picks a row whose label is not BENIGN. When there is none, or the
// capture has no label column, it falls back to a random row and reports why.
func (s *Sample) Attack(rng *rand.Rand) (Row, error) {
	if !s.HasLabel {
		return s.Random(rng), ErrNoLabel
	}
	attacks := make([]int, 0)
	for i, row := range s.Rows {
		if row.Label != string(ml.LabelBenign) {
			attacks = append(attacks, i)
		}
	}
	if len(attacks) == 0 {
		return s.Random(rng), ErrNoAttacks
	}
	return s.Rows[attacks[rng.Intn(len(attacks))]], nil
}
