// Package sample provides the immutable input array shared by every strategy.
package sample

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNotFinite is returned when an input value is NaN or infinite.
var ErrNotFinite = errors.New("sample value is not finite")

// Set is a fixed-length, read-only sequence of samples.
// The zero value is an empty set.
type Set struct {
	values []float64
}

// New returns a Set holding a copy of values.
func New(values []float64) Set {
	return Set{values: slices.Clone(values)}
}

// Generate returns n samples drawn uniformly from [0, 1).
func Generate(n int) Set {
	if n <= 0 {
		return Set{}
	}
	dist := distuv.Uniform{Min: 0, Max: 1}
	values := make([]float64, n)
	for i := range values {
		values[i] = dist.Rand()
	}
	return Set{values: values}
}

// Len returns the number of samples.
func (s Set) Len() int { return len(s.values) }

// At returns the i-th sample.
func (s Set) At(i int) float64 { return s.values[i] }

// Values returns a private copy of the samples. Callers may share the copy
// between goroutines as long as none of them writes to it.
func (s Set) Values() []float64 {
	if len(s.values) == 0 {
		return []float64{}
	}
	return slices.Clone(s.values)
}

// Load reads samples from path and keeps at most limit of them.
// A negative limit keeps everything.
func Load(path string, limit int) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read samples: %w", err)
	}
	set, err := Parse(data, limit)
	if err != nil {
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes either a JSON array of numbers or newline-separated numbers.
func Parse(data []byte, limit int) (Set, error) {
	trimmed := bytes.TrimSpace(data)
	var (
		values []float64
		err    error
	)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		values, err = parseJSON(trimmed, limit)
	} else {
		values, err = parseLines(trimmed, limit)
	}
	if err != nil {
		return Set{}, err
	}
	return Set{values: values}, nil
}

func parseJSON(data []byte, limit int) ([]float64, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON sample array")
	}
	var (
		values []float64
		err    error
		idx    int
	)
	gjson.ParseBytes(data).ForEach(func(_, item gjson.Result) bool {
		if limit >= 0 && len(values) >= limit {
			return false
		}
		if item.Type != gjson.Number {
			err = fmt.Errorf("element %d: expected number, got %s", idx, item.Type)
			return false
		}
		v := item.Float()
		if !finite(v) {
			err = fmt.Errorf("element %d: %w", idx, ErrNotFinite)
			return false
		}
		values = append(values, v)
		idx++
		return true
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func parseLines(data []byte, limit int) ([]float64, error) {
	var values []float64
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		if limit >= 0 && len(values) >= limit {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !finite(v) {
			return nil, fmt.Errorf("line %d: %w", line, ErrNotFinite)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
