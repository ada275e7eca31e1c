// Package timestampfilter recovers a smooth, monotonic time axis from
// noisy or low-resolution hardware timestamps using producer-supplied
// monotonically increasing frame indices. It fits a least-squares line
// ts ~= a*index + b over a sliding window of recent samples.
package timestampfilter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// outlierResidualMultiple is the multiple of the window's residual standard
// deviation beyond which a sample is flagged as probably invalid.
const outlierResidualMultiple = 3.0

// monotonicEpsilon is the small negative slack allowed before a filtered
// timestamp that is less than the previous one is flagged invalid.
const monotonicEpsilon = 1e-9

type sample struct {
	index        float64
	unfilteredTS float64
}

// Filter maintains a bounded window of (index, unfilteredTS) pairs and
// produces a filtered timestamp via linear regression.
type Filter struct {
	window        []sample
	windowSize    int
	startTime     float64
	lastFilterdTS float64
	haveLast      bool
}

// New returns a Filter with the given window length. A window length of 0
// disables filtering entirely: Filter then returns the unfiltered
// timestamp unchanged.
func New(windowSize int) *Filter {
	if windowSize < 0 {
		windowSize = 0
	}
	return &Filter{
		windowSize: windowSize,
		window:     make([]sample, 0, windowSize),
	}
}

// SetStartTime records the nominal start time of the stream. It does not
// affect the regression; it is carried for callers that want to report
// elapsed time relative to a fixed origin.
func (f *Filter) SetStartTime(t float64) {
	f.startTime = t
}

// StartTime returns the configured start time.
func (f *Filter) StartTime() float64 {
	return f.startTime
}

// SetWindowSize changes the averaging window length mid-stream. Per the
// design decision recorded in DESIGN.md, resizing truncates older entries
// and keeps the most recent samples rather than refitting them.
func (f *Filter) SetWindowSize(n int) {
	if n < 0 {
		n = 0
	}
	f.windowSize = n
	if n == 0 {
		f.window = f.window[:0]
		return
	}
	if len(f.window) > n {
		f.window = append([]sample(nil), f.window[len(f.window)-n:]...)
	}
}

// WindowSize returns the configured averaging window length.
func (f *Filter) WindowSize() int {
	return f.windowSize
}

// Filter appends (index, unfilteredTS) to the sliding window and returns a
// filtered timestamp plus whether the sample is probably valid. When
// probablyValid is false, the admission pipeline must silently drop the
// item rather than inserting it.
func (f *Filter) Filter(index uint64, unfilteredTS float64) (filteredTS float64, probablyValid bool) {
	if f.windowSize == 0 {
		f.lastFilterdTS = unfilteredTS
		f.haveLast = true
		return unfilteredTS, true
	}

	s := sample{index: float64(index), unfilteredTS: unfilteredTS}
	f.window = append(f.window, s)
	if len(f.window) > f.windowSize {
		f.window = f.window[1:]
	}

	if len(f.window) < 2 {
		f.lastFilterdTS = unfilteredTS
		f.haveLast = true
		return unfilteredTS, true
	}

	xs := make([]float64, len(f.window))
	ys := make([]float64, len(f.window))
	for i, w := range f.window {
		xs[i] = w.index
		ys[i] = w.unfilteredTS
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	filteredTS = beta*s.index + alpha

	valid := true
	if len(f.window) >= 3 {
		residuals := make([]float64, len(xs))
		for i := range xs {
			fit := beta*xs[i] + alpha
			residuals[i] = ys[i] - fit
		}
		stdDev := stat.StdDev(residuals, nil)
		currentResidual := ys[len(ys)-1] - filteredTS
		if stdDev > 0 && math.Abs(currentResidual) > outlierResidualMultiple*stdDev {
			valid = false
		}
	}

	if f.haveLast && filteredTS < f.lastFilterdTS-monotonicEpsilon {
		valid = false
	}

	if valid {
		f.lastFilterdTS = filteredTS
		f.haveLast = true
	}

	return filteredTS, valid
}
