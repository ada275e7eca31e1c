package buffer

import (
	"fmt"

	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
	"github.com/plustoolkit/streambuffer/internal/stream/streamerrors"
)

// TemporalMode selects how GetByTime resolves a requested timestamp to an
// item.
type TemporalMode int

const (
	Exact TemporalMode = iota
	Closest
	Interpolated
)

// GetByTime resolves time to a StreamItem according to mode.
func (b *Buffer) GetByTime(t float64, mode TemporalMode) (frame.StreamItem, error) {
	switch mode {
	case Exact:
		return b.getExact(t)
	case Closest:
		return b.getClosest(t)
	case Interpolated:
		return b.getInterpolated(t)
	default:
		return frame.StreamItem{}, invalidArgf("unknown temporal mode %v", mode)
	}
}

func (b *Buffer) getClosest(t float64) (frame.StreamItem, error) {
	uid, err := b.store.TimeToUID(t)
	if err != nil {
		return frame.StreamItem{}, err
	}
	return b.store.UIDToSlot(uid)
}

func (b *Buffer) getExact(t float64) (frame.StreamItem, error) {
	item, err := b.getClosest(t)
	if err != nil {
		return frame.StreamItem{}, err
	}
	if absFloat(item.FilteredTS-t) >= NegligibleTimeDifference {
		return frame.StreamItem{}, streamerrors.ErrNoExactMatch
	}
	return item, nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// getInterpolated resolves t by interpolating between the two occupied
// slots straddling it.
func (b *Buffer) getInterpolated(t float64) (frame.StreamItem, error) {
	itemA, err := b.getClosest(t)
	if err != nil {
		return frame.StreamItem{}, err
	}

	if itemA.Status != frame.StatusOk {
		monitoring.Debugf("stream buffer %s: interpolation failed at t=%f: closest item uid=%d has status=%v", b.sessionID, t, itemA.UID, itemA.Status)
		return frame.StreamItem{}, fmt.Errorf("%w: closest item is invalid (status=%v)", streamerrors.ErrInterpolationFailed, itemA.Status)
	}

	maxDiff := b.GetMaxAllowedTimeDifferenceSec()
	if absFloat(itemA.FilteredTS-t) > maxDiff {
		return frame.StreamItem{}, fmt.Errorf("%w: closest item too far from requested time (%.6fs > %.6fs)", streamerrors.ErrInterpolationFailed, absFloat(itemA.FilteredTS-t), maxDiff)
	}

	if absFloat(itemA.FilteredTS-t) < NegligibleTimeDifference {
		return itemA, nil
	}

	var itemBuid uint64
	if t < itemA.FilteredTS {
		if itemA.UID == 0 {
			return frame.StreamItem{}, fmt.Errorf("%w: no earlier neighbor available", streamerrors.ErrInterpolationFailed)
		}
		itemBuid = itemA.UID - 1
	} else {
		itemBuid = itemA.UID + 1
	}

	oldest, _ := b.store.Oldest()
	latest, _ := b.store.Latest()
	if itemBuid < oldest || itemBuid > latest {
		return frame.StreamItem{}, fmt.Errorf("%w: neighbor uid=%d out of range [%d,%d]", streamerrors.ErrInterpolationFailed, itemBuid, oldest, latest)
	}

	itemB, err := b.store.UIDToSlot(itemBuid)
	if err != nil {
		return frame.StreamItem{}, fmt.Errorf("%w: %v", streamerrors.ErrInterpolationFailed, err)
	}
	if itemB.Status != frame.StatusOk {
		return frame.StreamItem{}, fmt.Errorf("%w: neighbor uid=%d has status=%v", streamerrors.ErrInterpolationFailed, itemB.UID, itemB.Status)
	}
	if absFloat(itemB.FilteredTS-t) > maxDiff {
		return frame.StreamItem{}, fmt.Errorf("%w: neighbor too far from requested time (%.6fs > %.6fs)", streamerrors.ErrInterpolationFailed, absFloat(itemB.FilteredTS-t), maxDiff)
	}

	// itemA is the earlier or later of the pair depending on which side t
	// fell on; normalize to (earlier, later) for the weight computation.
	earlier, later := itemA, itemB
	if earlier.FilteredTS > later.FilteredTS {
		earlier, later = later, earlier
	}

	span := later.FilteredTS - earlier.FilteredTS
	var wEarlier, wLater float64
	if span == 0 {
		wEarlier, wLater = 0.5, 0.5
	} else {
		wLater = (t - earlier.FilteredTS) / span
		wEarlier = 1 - wLater
	}

	qEarlier := rotationToQuat(earlier.Matrix)
	qLater := rotationToQuat(later.Matrix)
	qInterp := slerp(qEarlier, qLater, wLater)

	result := quatToRotation(qInterp)
	for i := 0; i < 3; i++ {
		result[i][3] = wEarlier*earlier.Matrix[i][3] + wLater*later.Matrix[i][3]
	}

	localOffset := b.GetLocalTimeOffsetSec()
	out := itemA.DeepCopy()
	out.Matrix = result
	out.FilteredTS = t - localOffset
	out.UnfilteredTS = wEarlier*earlier.UnfilteredTS + wLater*later.UnfilteredTS
	out.Status = frame.StatusOk
	out.ValidTransform = true

	angleToA := geodesicAngleDeg(qInterp, rotationToQuat(itemA.Matrix))
	angleToB := geodesicAngleDeg(qInterp, rotationToQuat(itemB.Matrix))
	if angleToA > AngleInterpolationWarningThresholdDeg && angleToB > AngleInterpolationWarningThresholdDeg {
		monitoring.Logf("stream buffer %s: interpolated rotation at t=%f diverges from both neighbors by > %.1f deg (toA=%.2f, toB=%.2f)",
			b.sessionID, t, AngleInterpolationWarningThresholdDeg, angleToA, angleToB)
	}

	return out, nil
}
