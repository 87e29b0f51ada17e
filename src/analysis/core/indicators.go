package core

import "errors"

// ErrZeroBaseline marks a performance window whose first open is zero;
// the series is undefined rather than infinite.
var ErrZeroBaseline = errors.New("zero baseline open")

// -----------------------------------------------------------------------------

// RollingMean computes a fixed-window arithmetic mean over values. The
// result has one entry per input position; positions with fewer than
// window observations behind them are nil, never a shorter-window mean.
func RollingMean(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			mean := sum / float64(window)
			out[i] = &mean
		}
	}

	return out
}

// -----------------------------------------------------------------------------

// BaselinePerformance computes percentage change of each close against a
// fixed baseline: (close - baseline) / baseline * 100.
func BaselinePerformance(baseline float64, closes []float64) ([]float64, error) {
	if baseline == 0 {
		return nil, ErrZeroBaseline
	}

	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = (c - baseline) / baseline * 100
	}

	return out, nil
}

// -----------------------------------------------------------------------------

// ChangePercent is the percentage change of current against previous.
func ChangePercent(current, previous float64) (float64, error) {
	if previous == 0 {
		return 0, ErrZeroBaseline
	}
	return (current - previous) / previous * 100, nil
}
