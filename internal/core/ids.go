package core

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ErrCapacity is matched by CapacityError.
var ErrCapacity = errors.New("identifier range exhausted")

// CapacityError reports a request for more unique values than a range holds.
type CapacityError struct {
	Requested int
	Available int
	Min, Max  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("cannot draw %d unique values from [%d, %d]: only %d available",
		e.Requested, e.Min, e.Max, e.Available)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// denseRange is the largest range SampleUnique materialises as a pool.
// Wider ranges are sampled by rejection.
const denseRange = 1 << 20

// SampleUnique draws n distinct integers from [min, max] without replacement,
// skipping any value in exclude. Results are in draw order.
func SampleUnique(rng *rand.Rand, n, min, max int, exclude map[int]bool) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", n)
	}
	if min > max {
		return nil, fmt.Errorf("invalid range [%d, %d]", min, max)
	}

	// span is the range size; 0 means the full 64-bit range, which overflows.
	span := uint64(max) - uint64(min) + 1
	excluded := 0
	for v := range exclude {
		if exclude[v] && v >= min && v <= max {
			excluded++
		}
	}

	if span != 0 && span <= denseRange {
		return sampleDense(rng, n, min, max, exclude)
	}

	if span != 0 && uint64(n)+uint64(excluded) > span {
		return nil, &CapacityError{Requested: n, Available: int(span) - excluded, Min: min, Max: max}
	}
	return sampleSparse(rng, n, min, span, exclude), nil
}

// sampleDense is a partial Fisher-Yates shuffle over every allowed value.
func sampleDense(rng *rand.Rand, n, min, max int, exclude map[int]bool) ([]int, error) {
	pool := make([]int, 0, max-min+1)
	for v := min; v <= max; v++ {
		if !exclude[v] {
			pool = append(pool, v)
		}
	}
	if n > len(pool) {
		return nil, &CapacityError{Requested: n, Available: len(pool), Min: min, Max: max}
	}

	// The first n slots end up as the sample.
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n], nil
}

// sampleSparse draws with a seen-set, retrying collisions. The caller has
// checked capacity, so it terminates.
func sampleSparse(rng *rand.Rand, n, min int, span uint64, exclude map[int]bool) []int {
	out := make([]int, 0, n)
	seen := make(map[int]bool, n)
	for len(out) < n {
		var off uint64
		if span == 0 {
			off = rng.Uint64()
		} else {
			off = rng.Uint64N(span)
		}
		v := int(uint64(min) + off)
		if exclude[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// AssignIDs gives every row without an id a new UUID string. Existing ids are
// kept. It returns the number of ids assigned.
func AssignIDs(t *Table, newID func() string) int {
	if newID == nil {
		newID = uuid.NewString
	}
	t.AddColumn(FieldID)

	assigned := 0
	for _, row := range t.Rows {
		if IsNull(row[FieldID]) {
			row[FieldID] = newID()
			assigned++
		}
	}
	return assigned
}
