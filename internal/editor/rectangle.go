package editor

import (
	"fmt"

	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

// Rectangle2D is an axis-aligned pixel rectangle on the first two image
// axes.
type Rectangle2D struct {
	OriginX, OriginY uint32
	SizeX, SizeY     uint32
}

// FillRectangle overwrites the pixels of rect with a single gray level on
// every frame that carries an image. It is only defined for single-byte
// grayscale frames; fillGrayLevel is clamped to [0, 255]. Frames whose
// rectangle does not fit inside the image, or whose pixel type is not
// single-byte, are skipped with a warning rather than aborting the whole
// list.
func (l *TrackedFrameList) FillRectangle(rect Rectangle2D, fillGrayLevel int) {
	fillData := byte(0)
	switch {
	case fillGrayLevel < 0:
		fillData = 0
	case fillGrayLevel > 255:
		fillData = 255
	default:
		fillData = byte(fillGrayLevel)
	}

	for i, f := range l.Frames {
		if !f.HasImage {
			continue
		}
		img := f.Image
		if img.PixelType != frame.PixelTypeUint8 || img.Components != 1 {
			monitoring.Logf("editor: frame %d: fill rectangle only supported for single-byte grayscale images, skipping", i)
			continue
		}
		if rect.OriginX >= img.Size.X || rect.OriginY >= img.Size.Y {
			monitoring.Logf("editor: frame %d: fill rectangle origin (%d,%d) outside image size (%d,%d), skipping", i, rect.OriginX, rect.OriginY, img.Size.X, img.Size.Y)
			continue
		}
		if rect.SizeX == 0 || rect.OriginX+rect.SizeX > img.Size.X ||
			rect.SizeY == 0 || rect.OriginY+rect.SizeY > img.Size.Y {
			monitoring.Logf("editor: frame %d: fill rectangle size (%d,%d) does not fit image size (%d,%d) at origin (%d,%d), skipping",
				i, rect.SizeX, rect.SizeY, img.Size.X, img.Size.Y, rect.OriginX, rect.OriginY)
			continue
		}

		rowStride := int(img.Size.X)
		for y := uint32(0); y < rect.SizeY; y++ {
			rowStart := int(rect.OriginY+y)*rowStride + int(rect.OriginX)
			row := img.Bytes[rowStart : rowStart+int(rect.SizeX)]
			for x := range row {
				row[x] = fillData
			}
		}
	}
}

// CropRectangle replaces every frame's image with the sub-image described
// by rect (and, for 3-D frames, the z-range [originZ, originZ+sizeZ)),
// and records an Image-to-CroppedImage translation-only transform
// reflecting the crop origin.
func (l *TrackedFrameList) CropRectangle(rect Rectangle2D, originZ, sizeZ uint32) error {
	if sizeZ == 0 {
		sizeZ = 1
	}

	imageToCropped := frame.Identity()
	imageToCropped[0][3] = -float64(rect.OriginX)
	imageToCropped[1][3] = -float64(rect.OriginY)
	imageToCropped[2][3] = -float64(originZ)

	for i, f := range l.Frames {
		if !f.HasImage {
			continue
		}
		img := f.Image
		if rect.OriginX+rect.SizeX > img.Size.X || rect.OriginY+rect.SizeY > img.Size.Y || originZ+sizeZ > img.Size.Z {
			return fmt.Errorf("frame %d: crop rectangle out of bounds of image size %+v", i, img.Size)
		}

		bytesPerScalar := img.PixelType.BytesPerScalar()
		rowBytes := int(rect.SizeX) * int(img.Components) * bytesPerScalar
		srcRowStride := int(img.Size.X) * int(img.Components) * bytesPerScalar
		srcSliceStride := int(img.Size.Y) * srcRowStride

		out := make([]byte, 0, int(sizeZ)*int(rect.SizeY)*rowBytes)
		for z := uint32(0); z < sizeZ; z++ {
			for y := uint32(0); y < rect.SizeY; y++ {
				start := int(originZ+z)*srcSliceStride + int(rect.OriginY+y)*srcRowStride + int(rect.OriginX)*int(img.Components)*bytesPerScalar
				out = append(out, img.Bytes[start:start+rowBytes]...)
			}
		}

		f.Image.Bytes = out
		f.Image.Size = frame.Size{X: rect.SizeX, Y: rect.SizeY, Z: sizeZ}
		f.Transforms["ImageToCroppedImage"] = imageToCropped
		f.Status["ImageToCroppedImage"] = frame.StatusOk
	}
	return nil
}

// RemoveImageData drops the pixel payload from every frame, leaving
// transforms and fields intact. Used before writing a pose-only sequence.
func (l *TrackedFrameList) RemoveImageData() {
	for _, f := range l.Frames {
		f.Image = frame.PixelFrame{}
		f.HasImage = false
	}
}
