package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

func grayscaleFrame(width, height uint32, fill byte) frame.PixelFrame {
	bytes := make([]byte, width*height)
	for i := range bytes {
		bytes[i] = fill
	}
	return frame.PixelFrame{
		Size:       frame.Size{X: width, Y: height, Z: 1},
		PixelType:  frame.PixelTypeUint8,
		Components: 1,
		Bytes:      bytes,
	}
}

func TestFillRectangle_OverwritesOnlyRectanglePixels(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(4, 4, 0)
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	l.FillRectangle(Rectangle2D{OriginX: 1, OriginY: 1, SizeX: 2, SizeY: 2}, 200)

	require.Equal(t, byte(0), f.Image.Bytes[0*4+0])
	require.Equal(t, byte(200), f.Image.Bytes[1*4+1])
	require.Equal(t, byte(200), f.Image.Bytes[2*4+2])
	require.Equal(t, byte(0), f.Image.Bytes[3*4+3])
}

func TestFillRectangle_ClampsGrayLevel(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(2, 2, 0)
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	l.FillRectangle(Rectangle2D{OriginX: 0, OriginY: 0, SizeX: 2, SizeY: 2}, 999)
	for _, b := range f.Image.Bytes {
		require.Equal(t, byte(255), b)
	}

	l.FillRectangle(Rectangle2D{OriginX: 0, OriginY: 0, SizeX: 2, SizeY: 2}, -5)
	for _, b := range f.Image.Bytes {
		require.Equal(t, byte(0), b)
	}
}

func TestFillRectangle_SkipsOutOfBoundsRectangle(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(2, 2, 5)
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	l.FillRectangle(Rectangle2D{OriginX: 0, OriginY: 0, SizeX: 5, SizeY: 5}, 200)
	for _, b := range f.Image.Bytes {
		require.Equal(t, byte(5), b)
	}
}

func TestCropRectangle_ReplacesImageAndAddsTransform(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(4, 4, 0)
	for y := uint32(0); y < 4; y++ {
		for x := uint32(0); x < 4; x++ {
			f.Image.Bytes[y*4+x] = byte(y*4 + x)
		}
	}
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	require.NoError(t, l.CropRectangle(Rectangle2D{OriginX: 1, OriginY: 1, SizeX: 2, SizeY: 2}, 0, 0))

	require.Equal(t, frame.Size{X: 2, Y: 2, Z: 1}, f.Image.Size)
	require.Equal(t, byte(5), f.Image.Bytes[0])
	require.Equal(t, byte(6), f.Image.Bytes[1])
	require.Equal(t, byte(9), f.Image.Bytes[2])
	require.Equal(t, byte(10), f.Image.Bytes[3])

	m := f.Transforms["ImageToCroppedImage"]
	require.Equal(t, -1.0, m[0][3])
	require.Equal(t, -1.0, m[1][3])
}

func TestCropRectangle_RejectsOutOfBounds(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(2, 2, 0)
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	require.Error(t, l.CropRectangle(Rectangle2D{OriginX: 0, OriginY: 0, SizeX: 5, SizeY: 5}, 0, 0))
}

func TestRemoveImageData_ClearsImage(t *testing.T) {
	f := NewTrackedFrame()
	f.Image = grayscaleFrame(2, 2, 0)
	f.HasImage = true
	l := &TrackedFrameList{Frames: []*TrackedFrame{f}}

	l.RemoveImageData()
	require.False(t, f.HasImage)
	require.Nil(t, f.Image.Bytes)
}
