// Package editor implements offline, file-independent transformations over
// a flat, mutable TrackedFrameList: trim, decimate, merge, field rewrite,
// rectangle fill/crop, transform insertion, and image removal. The
// sequence-file codec that reads/writes this list to disk is an external
// collaborator and is not implemented here.
package editor

import (
	"fmt"

	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

// TrackedFrame is one frame of an offline-editable sequence: an image, a
// set of named transforms with their validity status, and arbitrary
// string fields.
type TrackedFrame struct {
	FrameNumber uint64
	Timestamp   float64
	Image       frame.PixelFrame
	HasImage    bool
	Transforms  map[string]frame.Matrix4x4
	Status      map[string]frame.ToolStatus
	Fields      map[string]string
}

// NewTrackedFrame returns an empty frame ready for field/transform
// population.
func NewTrackedFrame() *TrackedFrame {
	return &TrackedFrame{
		Transforms: make(map[string]frame.Matrix4x4),
		Status:     make(map[string]frame.ToolStatus),
		Fields:     make(map[string]string),
	}
}

// TrackedFrameList is the flat, mutable, in-memory sequence the editor
// operates on.
type TrackedFrameList struct {
	Frames []*TrackedFrame
}

// NumberOfFrames returns the number of frames currently in the list.
func (l *TrackedFrameList) NumberOfFrames() int {
	return len(l.Frames)
}

// Trim keeps only frames in [first, last] (inclusive).
func (l *TrackedFrameList) Trim(first, last uint) error {
	n := uint(len(l.Frames))
	if first > last || last >= n {
		return fmt.Errorf("invalid trim range [%d,%d] for %d frames", first, last, n)
	}
	l.Frames = append([]*TrackedFrame(nil), l.Frames[first:last+1]...)
	return nil
}

// Decimate keeps every factor-th frame (factor >= 2): frame 0 is always
// kept, then every subsequent (factor-1) frames are dropped.
func (l *TrackedFrameList) Decimate(factor uint) error {
	if factor < 2 {
		return fmt.Errorf("decimation factor must be >= 2, got %d", factor)
	}
	kept := make([]*TrackedFrame, 0, len(l.Frames)/int(factor)+1)
	for i, f := range l.Frames {
		if uint(i)%factor == 0 {
			kept = append(kept, f)
		}
	}
	l.Frames = kept
	return nil
}

// Merge appends other's frames after l's, in file order. When
// incrementTimestamps is true, other's frames are offset so that its first
// timestamp equals l's current last timestamp.
func (l *TrackedFrameList) Merge(other *TrackedFrameList, incrementTimestamps bool) {
	if len(other.Frames) == 0 {
		return
	}
	offset := 0.0
	if incrementTimestamps && len(l.Frames) > 0 {
		lastTS := l.Frames[len(l.Frames)-1].Timestamp
		firstTS := other.Frames[0].Timestamp
		offset = lastTS - firstTS
	}
	for _, f := range other.Frames {
		merged := *f
		merged.Timestamp += offset
		l.Frames = append(l.Frames, &merged)
	}
}
