package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plustoolkit/streambuffer/internal/config"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
	"github.com/plustoolkit/streambuffer/internal/stream/streamerrors"
)

func testFormat() frame.FrameFormat {
	return frame.FrameFormat{
		Size:       frame.Size{X: 2, Y: 2, Z: 1},
		PixelType:  frame.PixelTypeUint8,
		Components: 1,
	}
}

func newTestBuffer(t *testing.T) *Buffer {
	t.Helper()
	cap := uint32(8)
	cfg := &config.BufferConfig{Capacity: &cap}
	b, err := New(cfg, testFormat())
	require.NoError(t, err)
	return b
}

func ts(v float64) *float64 { return &v }

func TestAddVideo_RejectsNilPayload(t *testing.T) {
	b := newTestBuffer(t)
	ok, err := b.AddVideo(VideoAdmission{
		SrcSize:    frame.Size{X: 2, Y: 2, Z: 1},
		PixelType:  frame.PixelTypeUint8,
		Components: 1,
		FilteredTS: ts(1.0),
	})
	require.False(t, ok)
	require.ErrorIs(t, err, streamerrors.ErrNullPayload)
}

func TestAddVideo_RejectsFormatMismatch(t *testing.T) {
	b := newTestBuffer(t)
	ok, err := b.AddVideo(VideoAdmission{
		RawBytes:   make([]byte, 4),
		SrcSize:    frame.Size{X: 3, Y: 3, Z: 1},
		PixelType:  frame.PixelTypeUint8,
		Components: 1,
		FilteredTS: ts(1.0),
	})
	require.False(t, ok)
	require.ErrorIs(t, err, streamerrors.ErrFormatMismatch)
}

func TestAddVideo_AdmitsMatchingFrame(t *testing.T) {
	b := newTestBuffer(t)
	raw := []byte{1, 2, 3, 4}
	ok, err := b.AddVideo(VideoAdmission{
		RawBytes:   raw,
		SrcSize:    frame.Size{X: 2, Y: 2, Z: 1},
		PixelType:  frame.PixelTypeUint8,
		Components: 1,
		Index:      0,
		FilteredTS: ts(1.0),
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, b.HasLatestValidVideoData())

	uid, err := b.LatestUID()
	require.NoError(t, err)
	item, err := b.GetByUID(uid)
	require.NoError(t, err)
	require.Equal(t, raw, item.Frame.Bytes)
	require.Equal(t, frame.StatusOk, item.Status)
}

func TestAddVideo_SilentlyDropsOnFilterRejection(t *testing.T) {
	b := newTestBuffer(t)
	b.SetAveragedItemsForFiltering(5)

	for i := uint64(0); i < 5; i++ {
		ok, err := b.AddVideo(VideoAdmission{
			RawBytes:   make([]byte, 4),
			SrcSize:    frame.Size{X: 2, Y: 2, Z: 1},
			PixelType:  frame.PixelTypeUint8,
			Components: 1,
			Index:      i,
			UnfilteredTS: ts(float64(i) * 0.1),
		})
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := b.AddVideo(VideoAdmission{
		RawBytes:     make([]byte, 4),
		SrcSize:      frame.Size{X: 2, Y: 2, Z: 1},
		PixelType:    frame.PixelTypeUint8,
		Components:   1,
		Index:        5,
		UnfilteredTS: ts(1000.0),
	})
	require.NoError(t, err, "a filter-rejected sample is silently dropped, not an error")
	require.False(t, ok)
}

func TestAddPose_AdmitsValidStatus(t *testing.T) {
	b := newTestBuffer(t)
	m := frame.Identity()
	m[0][3] = 5.0

	ok, err := b.AddPose(PoseAdmission{
		Matrix:     m,
		Status:     frame.StatusOk,
		Index:      0,
		FilteredTS: ts(1.0),
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, b.HasLatestValidTransformData(), "pose admission does not itself gate ValidTransform")
}

func TestAddFields_RejectsEmptyMap(t *testing.T) {
	b := newTestBuffer(t)
	ok, err := b.AddFields(FieldsAdmission{Index: 0, FilteredTS: ts(1.0)})
	require.False(t, ok)
	require.ErrorIs(t, err, streamerrors.ErrNullPayload)
}

func TestAddFields_SetsFieldsAndValidTransformOnTransformKey(t *testing.T) {
	b := newTestBuffer(t)
	ok, err := b.AddFields(FieldsAdmission{
		Fields:     map[string]string{"StageToTrackerTransform": "1 0 0 0"},
		Index:      0,
		FilteredTS: ts(1.0),
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, b.HasLatestValidFieldData())
	require.True(t, b.HasLatestValidTransformData())
}

func TestClipRect_Enabled(t *testing.T) {
	var c *ClipRect
	require.False(t, c.enabled())

	c = &ClipRect{}
	require.False(t, c.enabled())

	c = &ClipRect{Size: [3]int{1, 1, 0}}
	require.True(t, c.enabled())
}
