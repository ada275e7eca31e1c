// Package frame defines the payload types carried by a stream buffer slot:
// pixel frames, tool status, and the timestamped stream item that wraps
// them.
package frame

import "strings"

// PixelType enumerates the scalar type backing a pixel frame's bytes.
type PixelType int

const (
	PixelTypeUnknown PixelType = iota
	PixelTypeUint8
	PixelTypeInt8
	PixelTypeUint16
	PixelTypeInt16
	PixelTypeUint32
	PixelTypeInt32
	PixelTypeFloat32
	PixelTypeFloat64
)

// BytesPerScalar returns the size in bytes of one scalar component.
func (t PixelType) BytesPerScalar() int {
	switch t {
	case PixelTypeUint8, PixelTypeInt8:
		return 1
	case PixelTypeUint16, PixelTypeInt16:
		return 2
	case PixelTypeUint32, PixelTypeInt32, PixelTypeFloat32:
		return 4
	case PixelTypeFloat64:
		return 8
	default:
		return 0
	}
}

// ImageType enumerates the acquisition modality of a pixel frame.
type ImageType int

const (
	ImageTypeBrightness ImageType = iota
	ImageTypeRFIQ
	ImageTypeRFReal
)

// ImageOrientation is the two-letter code mapping image axes to
// acquisition geometry (e.g. "MF", "UN").
type ImageOrientation string

const (
	OrientationMF ImageOrientation = "MF"
	OrientationMN ImageOrientation = "MN"
	OrientationUF ImageOrientation = "UF"
	OrientationUN ImageOrientation = "UN"
	OrientationFM ImageOrientation = "FM"
	OrientationNM ImageOrientation = "NM"
	OrientationFU ImageOrientation = "FU"
	OrientationNU ImageOrientation = "NU"
)

// transposedOrientations is the set of orientations whose first letter is
// F or N; frames declared with one of them have their X and Y extents
// swapped on admission. The admission pipeline consults this table via
// NeedsTranspose.
var transposedOrientations = map[ImageOrientation]bool{
	OrientationFM: true,
	OrientationNM: true,
	OrientationFU: true,
	OrientationNU: true,
}

// NeedsTranspose reports whether frames declared with this orientation
// require the output geometry's first two axes to be swapped relative to
// the source size.
func (o ImageOrientation) NeedsTranspose() bool {
	return transposedOrientations[o]
}

// Size is the (x, y, z) extent of a pixel frame in pixels. z is always >= 1;
// 2-D images carry z == 1.
type Size struct {
	X, Y, Z uint32
}

// ByteCount returns the number of bytes a frame of this size, pixel type and
// component count occupies.
func (s Size) ByteCount(pixelType PixelType, components uint8) int {
	return int(s.Z) * int(s.Y) * int(s.X) * int(components) * pixelType.BytesPerScalar()
}

// FrameFormat is the format every slot in a buffer must conform to.
type FrameFormat struct {
	Size             Size
	PixelType        PixelType
	Components       uint8
	ImageType        ImageType
	ImageOrientation ImageOrientation
}

// Equal reports whether two formats describe the same slot layout.
func (f FrameFormat) Equal(other FrameFormat) bool {
	return f.Size == other.Size &&
		f.PixelType == other.PixelType &&
		f.Components == other.Components &&
		f.ImageType == other.ImageType
}

// PixelFrame is the pre-allocated pixel payload carried by a slot.
type PixelFrame struct {
	Size             Size
	PixelType        PixelType
	Components       uint8
	ImageType        ImageType
	ImageOrientation ImageOrientation
	Bytes            []byte
}

// Format returns the FrameFormat described by this pixel frame.
func (p *PixelFrame) Format() FrameFormat {
	return FrameFormat{
		Size:             p.Size,
		PixelType:        p.PixelType,
		Components:       p.Components,
		ImageType:        p.ImageType,
		ImageOrientation: p.ImageOrientation,
	}
}

// resize reallocates the pixel frame's backing buffer to match the given
// format; stored content is not preserved.
func (p *PixelFrame) resize(f FrameFormat) {
	p.Size = f.Size
	p.PixelType = f.PixelType
	p.Components = f.Components
	p.ImageType = f.ImageType
	p.ImageOrientation = f.ImageOrientation
	p.Bytes = make([]byte, f.Size.ByteCount(f.PixelType, f.Components))
}

// ToolStatus is the liveness/validity state of a tracked pose.
type ToolStatus int

const (
	StatusOk ToolStatus = iota
	StatusMissing
	StatusOutOfView
	StatusOutOfVolume
	StatusSwitch1On
	StatusSwitch2On
	StatusSwitch3On
	StatusInvalid
)

func (s ToolStatus) String() string {
	switch s {
	case StatusOk:
		return "OK"
	case StatusMissing:
		return "MISSING"
	case StatusOutOfView:
		return "OUT_OF_VIEW"
	case StatusOutOfVolume:
		return "OUT_OF_VOLUME"
	case StatusSwitch1On:
		return "SWITCH1_ON"
	case StatusSwitch2On:
		return "SWITCH2_ON"
	case StatusSwitch3On:
		return "SWITCH3_ON"
	case StatusInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Matrix4x4 is a rigid-transform matrix stored row-major.
type Matrix4x4 [4][4]float64

// Identity returns the 4x4 identity matrix.
func Identity() Matrix4x4 {
	var m Matrix4x4
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

// UndefinedTimestamp marks a timestamp field as "missing".
const UndefinedTimestamp = -1.0

// StreamItem is the payload carried by one slot of a stream buffer.
type StreamItem struct {
	UID            uint64
	Index          uint64
	FilteredTS     float64
	UnfilteredTS   float64
	Status         ToolStatus
	Matrix         Matrix4x4
	ValidTransform bool
	ValidVideo     bool
	Frame          PixelFrame
	Fields         map[string]string
}

// NewStreamItem returns a zero-value item with an identity matrix, an empty
// field map, and a pre-allocated pixel frame matching format.
func NewStreamItem(format FrameFormat) StreamItem {
	item := StreamItem{
		Matrix:       Identity(),
		FilteredTS:   UndefinedTimestamp,
		UnfilteredTS: UndefinedTimestamp,
		Fields:       make(map[string]string),
	}
	item.Frame.resize(format)
	return item
}

// Reinit resets a slot for reuse on admission without reallocating its pixel
// buffer, unless the format has changed.
func (s *StreamItem) Reinit(format FrameFormat) {
	if !s.Frame.Format().Equal(format) {
		s.Frame.resize(format)
	}
	s.UID = 0
	s.Index = 0
	s.FilteredTS = UndefinedTimestamp
	s.UnfilteredTS = UndefinedTimestamp
	s.Status = StatusOk
	s.Matrix = Identity()
	s.ValidTransform = false
	s.ValidVideo = false
	for k := range s.Fields {
		delete(s.Fields, k)
	}
}

// SetFields copies fields into the slot's field map and recomputes
// ValidTransform: set when any field name contains the substring
// "Transform".
func (s *StreamItem) SetFields(fields map[string]string) {
	for k, v := range fields {
		s.Fields[k] = v
		if strings.Contains(k, "Transform") {
			s.ValidTransform = true
		}
	}
}

// DeepCopy returns an independent copy of the item, including its pixel
// bytes and field map. Callers of buffer queries always receive a DeepCopy
// so no caller retains a reference into slot storage.
func (s *StreamItem) DeepCopy() StreamItem {
	out := *s
	out.Frame.Bytes = make([]byte, len(s.Frame.Bytes))
	copy(out.Frame.Bytes, s.Frame.Bytes)
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	return out
}
