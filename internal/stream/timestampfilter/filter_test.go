package timestampfilter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter_ZeroWindowPassesThrough(t *testing.T) {
	f := New(0)
	ts, ok := f.Filter(0, 1.234)
	require.True(t, ok)
	require.Equal(t, 1.234, ts)
}

func TestFilter_FirstTwoSamplesPassThroughUnfiltered(t *testing.T) {
	f := New(5)

	ts, ok := f.Filter(0, 0.0)
	require.True(t, ok)
	require.Equal(t, 0.0, ts)

	ts, ok = f.Filter(1, 0.1)
	require.True(t, ok)
	require.Equal(t, 0.1, ts)
}

func TestFilter_FitsLinearSeriesExactly(t *testing.T) {
	f := New(10)

	var last float64
	var ok bool
	for i := uint64(0); i < 10; i++ {
		last, ok = f.Filter(i, float64(i)*0.1)
		require.True(t, ok)
	}
	require.InDelta(t, 0.9, last, 1e-9)
}

func TestFilter_RejectsOutlier(t *testing.T) {
	f := New(10)
	for i := uint64(0); i < 8; i++ {
		_, ok := f.Filter(i, float64(i)*0.1)
		require.True(t, ok)
	}
	_, ok := f.Filter(8, 1000.0)
	require.False(t, ok, "a wildly off-trend sample must be rejected")
}

func TestFilter_RejectsNonMonotonicOutput(t *testing.T) {
	f := New(3)
	for i := uint64(0); i < 3; i++ {
		_, ok := f.Filter(i, float64(i)*0.1)
		require.True(t, ok)
	}
	// A sample that would pull the fitted line backwards should be
	// rejected even if it is not a residual outlier by itself.
	_, ok := f.Filter(3, -10.0)
	require.False(t, ok)
}

func TestFilter_SetWindowSizeTruncatesToMostRecent(t *testing.T) {
	f := New(10)
	for i := uint64(0); i < 10; i++ {
		_, ok := f.Filter(i, float64(i)*0.1)
		require.True(t, ok)
	}
	f.SetWindowSize(3)
	require.Equal(t, 3, f.WindowSize())
	require.Len(t, f.window, 3)
	require.Equal(t, float64(7), f.window[0].index)
	require.Equal(t, float64(9), f.window[2].index)
}

func TestFilter_SetWindowSizeZeroDisablesFiltering(t *testing.T) {
	f := New(5)
	for i := uint64(0); i < 5; i++ {
		f.Filter(i, float64(i)*0.1)
	}
	f.SetWindowSize(0)
	ts, ok := f.Filter(5, 9.9)
	require.True(t, ok)
	require.Equal(t, 9.9, ts)
}

func TestFilter_StartTimeIsCarriedNotUsedInFit(t *testing.T) {
	f := New(5)
	f.SetStartTime(100.0)
	require.Equal(t, 100.0, f.StartTime())
	ts, ok := f.Filter(0, 0.0)
	require.True(t, ok)
	require.Equal(t, 0.0, ts)
}
