package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReinit_PreservesBytesWhenFormatUnchanged(t *testing.T) {
	format := FrameFormat{
		Size:       Size{X: 2, Y: 2, Z: 1},
		PixelType:  PixelTypeUint8,
		Components: 1,
	}
	item := NewStreamItem(format)
	item.Frame.Bytes[0] = 7

	item.Reinit(format)

	require.Equal(t, byte(7), item.Frame.Bytes[0], "Reinit must not clobber pixel content when format is unchanged")
	require.Equal(t, UndefinedTimestamp, item.FilteredTS)
	require.False(t, item.ValidVideo)
	require.False(t, item.ValidTransform)
}

func TestReinit_ReallocatesOnFormatChange(t *testing.T) {
	small := FrameFormat{Size: Size{X: 2, Y: 2, Z: 1}, PixelType: PixelTypeUint8, Components: 1}
	big := FrameFormat{Size: Size{X: 4, Y: 4, Z: 1}, PixelType: PixelTypeUint8, Components: 1}

	item := NewStreamItem(small)
	item.Reinit(big)

	require.Len(t, item.Frame.Bytes, 16)
}

func TestSetFields_MarksValidTransformOnTransformSubstring(t *testing.T) {
	item := NewStreamItem(FrameFormat{})
	item.SetFields(map[string]string{"ProbeToTrackerTransform": "1 0 0 0"})
	require.True(t, item.ValidTransform)
}

func TestSetFields_NoTransformKeyLeavesValidTransformFalse(t *testing.T) {
	item := NewStreamItem(FrameFormat{})
	item.SetFields(map[string]string{"EncoderPosition": "120"})
	require.False(t, item.ValidTransform)
}

func TestDeepCopy_IsIndependent(t *testing.T) {
	format := FrameFormat{Size: Size{X: 2, Y: 1, Z: 1}, PixelType: PixelTypeUint8, Components: 1}
	item := NewStreamItem(format)
	item.Frame.Bytes[0] = 1
	item.Fields = map[string]string{"a": "1"}

	cp := item.DeepCopy()
	cp.Frame.Bytes[0] = 2
	cp.Fields["a"] = "2"

	require.Equal(t, byte(1), item.Frame.Bytes[0])
	require.Equal(t, "1", item.Fields["a"])
}

func TestImageOrientation_NeedsTranspose(t *testing.T) {
	require.True(t, OrientationFM.NeedsTranspose())
	require.True(t, OrientationNU.NeedsTranspose())
	require.False(t, OrientationMF.NeedsTranspose())
	require.False(t, OrientationUN.NeedsTranspose())
}

func TestFrameFormat_EqualIgnoresOrientation(t *testing.T) {
	a := FrameFormat{Size: Size{X: 1, Y: 1, Z: 1}, PixelType: PixelTypeUint8, Components: 1, ImageOrientation: OrientationMF}
	b := a
	b.ImageOrientation = OrientationUN
	require.True(t, a.Equal(b))
}

func TestSize_ByteCount(t *testing.T) {
	s := Size{X: 3, Y: 2, Z: 1}
	require.Equal(t, 6, s.ByteCount(PixelTypeUint8, 1))
	require.Equal(t, 24, s.ByteCount(PixelTypeFloat32, 1))
	require.Equal(t, 12, s.ByteCount(PixelTypeUint8, 2))
}
