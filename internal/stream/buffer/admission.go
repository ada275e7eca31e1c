package buffer

import (
	"fmt"

	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
	"github.com/plustoolkit/streambuffer/internal/stream/streamerrors"
)

// ClipRect expresses an optional clip rectangle on the three frame axes.
// A nil *ClipRect, or one whose Size is zero on all three axes, means
// NO_CLIP: clipping is disabled. An enabled clip with a zero Z size covers
// a single slice.
type ClipRect struct {
	Origin [3]int
	Size   [3]int
}

// enabled reports whether this clip rectangle actually restricts the
// source geometry.
func (c *ClipRect) enabled() bool {
	return c != nil && (c.Size[0] != 0 || c.Size[1] != 0 || c.Size[2] != 0)
}

// VideoAdmission bundles the parameters of a single video admission call.
type VideoAdmission struct {
	RawBytes         []byte
	SrcOrientation   frame.ImageOrientation
	SrcSize          frame.Size
	PixelType        frame.PixelType
	Components       uint8
	ImageType        frame.ImageType
	HeaderSkipBytes  int
	Index            uint64
	Clip             *ClipRect
	UnfilteredTS     *float64
	FilteredTS       *float64
	Fields           map[string]string
}

// outputGeometry starts from SrcSize, substitutes the clip rectangle's
// size if clipping is requested, then swaps the X and Y extents if the
// orientation NeedsTranspose. Z is never moved: no three-axis IJK->KIJ
// rotation of the dimensions is performed.
func outputGeometry(v *VideoAdmission) frame.Size {
	size := v.SrcSize
	if v.Clip.enabled() {
		size = frame.Size{
			X: uint32(v.Clip.Size[0]),
			Y: uint32(v.Clip.Size[1]),
			Z: uint32(v.Clip.Size[2]),
		}
		if size.Z == 0 {
			size.Z = 1
		}
	}
	if v.SrcOrientation.NeedsTranspose() {
		size.X, size.Y = size.Y, size.X
	}
	return size
}

// AddVideo admits a pixel frame. On success it returns (true, nil). A
// filtered-timestamp rejection by the timestamp filter is not an error: it
// returns (false, nil) and the item is silently dropped.
func (b *Buffer) AddVideo(v VideoAdmission) (bool, error) {
	if v.RawBytes == nil {
		return false, streamerrors.ErrNullPayload
	}
	if v.HeaderSkipBytes < 0 {
		return false, invalidArgf("header skip bytes must be non-negative, got %d", v.HeaderSkipBytes)
	}

	outSize := outputGeometry(&v)
	bufferFormat := b.store.FrameFormat()
	candidate := frame.FrameFormat{
		Size:       outSize,
		PixelType:  v.PixelType,
		Components: v.Components,
		ImageType:  v.ImageType,
	}
	if !candidate.Equal(bufferFormat) {
		return false, fmt.Errorf("%w: got size=%+v pixel_type=%v components=%d image_type=%v, want size=%+v pixel_type=%v components=%d image_type=%v",
			streamerrors.ErrFormatMismatch, outSize, v.PixelType, v.Components, v.ImageType,
			bufferFormat.Size, bufferFormat.PixelType, bufferFormat.Components, bufferFormat.ImageType)
	}

	unfiltered, filtered, ok := b.resolveTimestamps(v.Index, v.UnfilteredTS, v.FilteredTS)
	if !ok {
		return false, nil
	}

	oriented, err := orientAndClip(v.RawBytes[v.HeaderSkipBytes:], v.SrcSize, v.SrcOrientation, v.Clip, v.PixelType, v.Components)
	if err != nil {
		return false, err
	}
	if len(oriented) != outSize.ByteCount(v.PixelType, v.Components) {
		return false, streamerrors.ErrAllocationFailure
	}

	uid, err := b.store.Admit(filtered, func(slot *frame.StreamItem) {
		copy(slot.Frame.Bytes, oriented)
		slot.Frame.ImageType = v.ImageType
		slot.Frame.ImageOrientation = v.SrcOrientation
		slot.Index = v.Index
		slot.UnfilteredTS = unfiltered
		slot.Status = frame.StatusOk
		slot.ValidVideo = true
		if v.Fields != nil {
			slot.SetFields(v.Fields)
		}
	})
	if err != nil {
		monitoring.Debugf("stream buffer %s: AddVideo refused index=%d: %v", b.sessionID, v.Index, err)
		return false, err
	}
	_ = uid
	return true, nil
}

// orientAndClip is the hook for the orientation/flip/clip transform
// delegated to an external image-kernel collaborator. This default
// implementation performs only the clip-rect sub-copy; an identity
// pass-through is used when no clipping is requested. Callers embedding a
// real flip/clip kernel should not need to touch this package: wire a
// different frame.PixelFrame producer upstream and pass already-oriented
// bytes with Clip == nil.
func orientAndClip(src []byte, srcSize frame.Size, orientation frame.ImageOrientation, clip *ClipRect, pixelType frame.PixelType, components uint8) ([]byte, error) {
	if !clip.enabled() {
		return src, nil
	}

	bytesPerScalar := pixelType.BytesPerScalar()
	rowStride := int(srcSize.X) * int(components) * bytesPerScalar
	sliceStride := int(srcSize.Y) * rowStride

	clipDepth := clip.Size[2]
	if clipDepth == 0 {
		clipDepth = 1
	}

	clipRowBytes := clip.Size[0] * int(components) * bytesPerScalar
	out := make([]byte, 0, clip.Size[0]*clip.Size[1]*clipDepth*int(components)*bytesPerScalar)

	for z := 0; z < clipDepth; z++ {
		srcZ := clip.Origin[2] + z
		for y := 0; y < clip.Size[1]; y++ {
			srcY := clip.Origin[1] + y
			rowStart := srcZ*sliceStride + srcY*rowStride + clip.Origin[0]*int(components)*bytesPerScalar
			if rowStart < 0 || rowStart+clipRowBytes > len(src) {
				return nil, invalidArgf("clip rectangle out of bounds of source frame")
			}
			out = append(out, src[rowStart:rowStart+clipRowBytes]...)
		}
	}
	return out, nil
}

// PoseAdmission bundles the parameters of a single pose admission call.
type PoseAdmission struct {
	Matrix       frame.Matrix4x4
	Status       frame.ToolStatus
	Index        uint64
	UnfilteredTS *float64
	FilteredTS   *float64
	Fields       map[string]string
}

// AddPose admits a tracked pose. Identical to AddVideo except there is no
// image copy and no geometry check.
func (b *Buffer) AddPose(p PoseAdmission) (bool, error) {
	unfiltered, filtered, ok := b.resolveTimestamps(p.Index, p.UnfilteredTS, p.FilteredTS)
	if !ok {
		return false, nil
	}

	matrix := p.Matrix
	_, err := b.store.Admit(filtered, func(slot *frame.StreamItem) {
		slot.Matrix = matrix
		slot.Status = p.Status
		slot.Index = p.Index
		slot.UnfilteredTS = unfiltered
		slot.ValidTransform = true
		if p.Fields != nil {
			slot.SetFields(p.Fields)
		}
	})
	if err != nil {
		monitoring.Debugf("stream buffer %s: AddPose refused index=%d: %v", b.sessionID, p.Index, err)
		return false, err
	}
	return true, nil
}

// FieldsAdmission bundles the parameters of a single fields-only admission
// call.
type FieldsAdmission struct {
	Fields       map[string]string
	Index        uint64
	UnfilteredTS *float64
	FilteredTS   *float64
}

// AddFields admits a fields-only update: only the field map is recorded.
// The matrix remains identity and the image remains the slot's prior
// content (from the ring's FIFO reuse), so consumers must check
// ValidTransform/ValidVideo rather than assuming either is populated.
func (b *Buffer) AddFields(f FieldsAdmission) (bool, error) {
	if len(f.Fields) == 0 {
		return false, streamerrors.ErrNullPayload
	}

	unfiltered, filtered, ok := b.resolveTimestamps(f.Index, f.UnfilteredTS, f.FilteredTS)
	if !ok {
		return false, nil
	}

	_, err := b.store.Admit(filtered, func(slot *frame.StreamItem) {
		slot.Index = f.Index
		slot.UnfilteredTS = unfiltered
		slot.SetFields(f.Fields)
	})
	if err != nil {
		monitoring.Debugf("stream buffer %s: AddFields refused index=%d: %v", b.sessionID, f.Index, err)
		return false, err
	}
	return true, nil
}
