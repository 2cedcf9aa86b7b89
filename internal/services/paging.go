package services

import (
	"errors"
	"fmt"
)

// Pagination bounds. Out-of-range values are rejected, never clamped.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Pagination errors.
var (
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

// pageBounds validates page and pageSize and returns the half-open slice
// interval [lo, hi) of the requested page over a set of the given total size.
// A page past the end of the set yields an empty interval, not an error: the
// caller still reports the true total.
func pageBounds(total, page, pageSize int) (lo, hi int, err error) {
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}

	lo = (page - 1) * pageSize
	if lo >= total {
		return total, total, nil
	}
	hi = lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi, nil
}
