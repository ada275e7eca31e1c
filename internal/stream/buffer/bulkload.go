package buffer

import (
	"fmt"
	"strconv"

	"github.com/plustoolkit/streambuffer/internal/editor"
	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

// TimestampPolicy selects which of a source frame's timestamp fields a
// bulk loader trusts when copying an offline TrackedFrameList into a live
// Buffer.
type TimestampPolicy int

const (
	// ReadFilteredAndUnfiltered trusts both axes as recorded on the source
	// frame: Timestamp is the filtered value, the "UnfilteredTimestamp"
	// field is the unfiltered value. Both must be present.
	ReadFilteredAndUnfiltered TimestampPolicy = iota
	// ReadUnfilteredComputeFiltered trusts only the "UnfilteredTimestamp"
	// field and lets the timestamp filter derive the filtered value,
	// admitting the frame through the same path a live producer would.
	ReadUnfilteredComputeFiltered
	// ReadFilteredIgnoreUnfiltered trusts only Timestamp and uses it for
	// both axes, ignoring any "UnfilteredTimestamp" field.
	ReadFilteredIgnoreUnfiltered
)

// unfilteredTimestampField is the reserved TrackedFrame field name this
// package reads as a frame's unfiltered timestamp; it is excluded from the
// copied custom field set regardless of policy.
const unfilteredTimestampField = "UnfilteredTimestamp"

func sourceTimestamps(f *editor.TrackedFrame, policy TimestampPolicy) (unfiltered, filtered float64, err error) {
	switch policy {
	case ReadFilteredIgnoreUnfiltered:
		return f.Timestamp, f.Timestamp, nil
	case ReadUnfilteredComputeFiltered:
		u, err := parseUnfilteredField(f)
		if err != nil {
			return 0, 0, err
		}
		return u, 0, nil
	default: // ReadFilteredAndUnfiltered
		u, err := parseUnfilteredField(f)
		if err != nil {
			return 0, 0, err
		}
		return u, f.Timestamp, nil
	}
}

func parseUnfilteredField(f *editor.TrackedFrame) (float64, error) {
	raw, ok := f.Fields[unfilteredTimestampField]
	if !ok {
		return 0, fmt.Errorf("frame #%d missing %q field", f.FrameNumber, unfilteredTimestampField)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("frame #%d: parse %q: %w", f.FrameNumber, unfilteredTimestampField, err)
	}
	return v, nil
}

func customFieldsExcluding(fields map[string]string, exclude ...string) map[string]string {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if skip[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// CopyImagesFrom admits every frame of list as a video item, deriving the
// buffer's frame format from the list's first frame and reallocating slot
// storage to fit. When copyCustomFields is true, every frame field other
// than the reserved timestamp field is carried into the admitted slot.
// Frames whose timestamps can't be resolved under policy are skipped; the
// number of skipped frames is returned alongside the first error.
func (b *Buffer) CopyImagesFrom(list *editor.TrackedFrameList, policy TimestampPolicy, copyCustomFields bool) (skipped int, err error) {
	if list.NumberOfFrames() == 0 {
		return 0, invalidArgf("source list has no frames")
	}

	first := list.Frames[0]
	b.SetFrameFormat(frame.FrameFormat{
		Size:       first.Image.Size,
		PixelType:  first.Image.PixelType,
		Components: first.Image.Components,
		ImageType:  first.Image.ImageType,
	})
	if err := b.SetCapacity(uint32(list.NumberOfFrames())); err != nil {
		return 0, fmt.Errorf("CopyImagesFrom: resize: %w", err)
	}

	var firstErr error
	for _, f := range list.Frames {
		unfiltered, filtered, tsErr := sourceTimestamps(f, policy)
		if tsErr != nil {
			monitoring.Logf("buffer: CopyImagesFrom: %v", tsErr)
			skipped++
			if firstErr == nil {
				firstErr = tsErr
			}
			continue
		}

		var fields map[string]string
		if copyCustomFields {
			fields = customFieldsExcluding(f.Fields, unfilteredTimestampField)
		}

		admission := VideoAdmission{
			RawBytes:         f.Image.Bytes,
			SrcOrientation:   f.Image.ImageOrientation,
			SrcSize:          f.Image.Size,
			PixelType:        f.Image.PixelType,
			Components:       f.Image.Components,
			ImageType:        f.Image.ImageType,
			Index:            f.FrameNumber,
			UnfilteredTS:     &unfiltered,
			Fields:           fields,
		}
		if policy != ReadUnfilteredComputeFiltered {
			admission.FilteredTS = &filtered
		}

		if _, err := b.AddVideo(admission); err != nil {
			monitoring.Logf("buffer: CopyImagesFrom: frame #%d: %v", f.FrameNumber, err)
			skipped++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return skipped, firstErr
}

// CopyTransformsFrom admits the named transform of every frame in list as a
// pose item. A frame missing transformName is skipped.
func (b *Buffer) CopyTransformsFrom(list *editor.TrackedFrameList, policy TimestampPolicy, transformName string) (skipped int, err error) {
	if err := b.SetCapacity(uint32(list.NumberOfFrames()) + 1); err != nil {
		return 0, fmt.Errorf("CopyTransformsFrom: resize: %w", err)
	}

	var firstErr error
	for _, f := range list.Frames {
		matrix, ok := f.Transforms[transformName]
		if !ok {
			monitoring.Logf("buffer: CopyTransformsFrom: frame #%d missing transform %q", f.FrameNumber, transformName)
			skipped++
			if firstErr == nil {
				firstErr = fmt.Errorf("frame #%d missing transform %q", f.FrameNumber, transformName)
			}
			continue
		}
		status := f.Status[transformName]

		unfiltered, filtered, tsErr := sourceTimestamps(f, policy)
		if tsErr != nil {
			monitoring.Logf("buffer: CopyTransformsFrom: %v", tsErr)
			skipped++
			if firstErr == nil {
				firstErr = tsErr
			}
			continue
		}

		pose := PoseAdmission{
			Matrix:       matrix,
			Status:       status,
			Index:        f.FrameNumber,
			UnfilteredTS: &unfiltered,
		}
		if policy != ReadUnfilteredComputeFiltered {
			pose.FilteredTS = &filtered
		}

		if _, err := b.AddPose(pose); err != nil {
			monitoring.Logf("buffer: CopyTransformsFrom: frame #%d: %v", f.FrameNumber, err)
			skipped++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return skipped, firstErr
}
