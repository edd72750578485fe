// Package demo holds the matrix workload run by the chronoflow command.
package demo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/chronoflow/pkg/common/validation"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"
)

// ValueRange bounds the random matrix entries to [-ValueRange, ValueRange).
const ValueRange = 16.0

// Matrix is a square matrix whose rows are processed by separate tasks.
// Each task touches only its own row.
type Matrix struct {
	rows [][]float64
}

// NewMatrix allocates a size x size zero matrix.
func NewMatrix(size int) (*Matrix, error) {
	if err := validation.ValidatePositive("demo", "size", size); err != nil {
		return nil, err
	}
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, size)
	}
	return &Matrix{rows: rows}, nil
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return len(m.rows)
}

// Row returns row i. The slice aliases the matrix.
func (m *Matrix) Row(i int) []float64 {
	return m.rows[i]
}

// Report holds the figures printed by the matrix command.
type Report struct {
	Size          int
	RandomSum     float64
	NormalizedSum float64
	Elapsed       time.Duration
}

// RunMatrix fills a matrix with random values, sums it, normalizes every row
// to unit length and sums it again. Every row operation is a separate ASAP
// task on pool.
func RunMatrix(ctx context.Context, pool *workerpool.Pool, size int, seed int64) (Report, error) {
	start := time.Now()

	m, err := NewMatrix(size)
	if err != nil {
		return Report{}, err
	}

	if err := m.Fill(ctx, pool, seed); err != nil {
		return Report{}, err
	}
	randomSum, err := m.Sum(ctx, pool)
	if err != nil {
		return Report{}, err
	}

	if err := m.Normalize(ctx, pool); err != nil {
		return Report{}, err
	}
	normalizedSum, err := m.Sum(ctx, pool)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Size:          size,
		RandomSum:     randomSum,
		NormalizedSum: normalizedSum,
		Elapsed:       time.Since(start),
	}, nil
}

// Fill writes uniform random values into every row, one task per row.
// Each row draws from its own source derived from seed, so the result does
// not depend on which worker runs which row.
func (m *Matrix) Fill(ctx context.Context, pool *workerpool.Pool, seed int64) error {
	seeds := rand.New(rand.NewSource(seed))

	return m.forEachRow(ctx, pool, func(i int) func() error {
		rowSeed := seeds.Int63()
		return func() error {
			r := rand.New(rand.NewSource(rowSeed))
			for j := range m.rows[i] {
				m.rows[i][j] = (r.Float64()*2 - 1) * ValueRange
			}
			return nil
		}
	})
}

// Normalize scales every row to unit Euclidean length. All-zero rows are left
// unchanged.
func (m *Matrix) Normalize(ctx context.Context, pool *workerpool.Pool) error {
	log := zap.S().Named("demo")

	return m.forEachRow(ctx, pool, func(i int) func() error {
		return func() error {
			log.Debugw("normalizing row", "row", i)
			normalizeRow(m.rows[i])
			return nil
		}
	})
}

// Sum adds the matrix up. Row sums are computed by one task each and added
// in row order, so the result equals a sequential sum.
func (m *Matrix) Sum(ctx context.Context, pool *workerpool.Pool) (float64, error) {
	log := zap.S().Named("demo")

	sums := make([]*workerpool.Future[float64], len(m.rows))
	for i := range m.rows {
		f, err := workerpool.SubmitValue(pool, workerpool.ASAP(), func() float64 {
			log.Debugw("summing row", "row", i)
			return rowSum(m.rows[i])
		})
		if err != nil {
			return 0, fmt.Errorf("submit row %d sum: %w", i, err)
		}
		sums[i] = f
	}

	var total float64
	for i, f := range sums {
		sum, err := f.Get(ctx)
		if err != nil {
			return 0, fmt.Errorf("row %d sum: %w", i, err)
		}
		total += sum
	}
	return total, nil
}

// forEachRow submits one task per row and waits for all of them.
func (m *Matrix) forEachRow(ctx context.Context, pool *workerpool.Pool, task func(row int) func() error) error {
	futures := make([]*workerpool.Future[struct{}], len(m.rows))
	for i := range m.rows {
		f, err := workerpool.SubmitFunc(pool, workerpool.ASAP(), task(i))
		if err != nil {
			return fmt.Errorf("submit row %d: %w", i, err)
		}
		futures[i] = f
	}

	for i, f := range futures {
		if err := f.Wait(ctx); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func rowSum(row []float64) float64 {
	var sum float64
	for _, v := range row {
		sum += v
	}
	return sum
}

func normalizeRow(row []float64) {
	var squares float64
	for _, v := range row {
		squares += v * v
	}
	mag := math.Sqrt(squares)
	if mag == 0 {
		return
	}
	for j := range row {
		row[j] /= mag
	}
}
