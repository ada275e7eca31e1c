// Package buffer implements the timestamped circular stream buffer: the
// admission pipeline and temporal query engine composed on top of
// internal/stream/ring and internal/stream/timestampfilter.
package buffer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plustoolkit/streambuffer/internal/config"
	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
	"github.com/plustoolkit/streambuffer/internal/stream/ring"
	"github.com/plustoolkit/streambuffer/internal/stream/streamerrors"
	"github.com/plustoolkit/streambuffer/internal/stream/timestampfilter"
)

// NegligibleTimeDifference is the threshold below which two timestamps are
// treated as equal (10 microseconds).
const NegligibleTimeDifference = 1e-5

// AngleInterpolationWarningThresholdDeg is the geodesic angle, in degrees,
// beyond which both neighbor comparisons must fall before an interpolation
// warning is emitted.
const AngleInterpolationWarningThresholdDeg = 10.0

// TimestampReportRow is one row of the append-only diagnostic table.
type TimestampReportRow struct {
	Index        uint64
	UnfilteredTS float64
	FilteredTS   float64
}

// Buffer is a bounded, time-indexed store of StreamItems. It is safe for a
// single writer goroutine and multiple concurrent reader goroutines.
type Buffer struct {
	mu sync.Mutex // guards the fields below; slot storage is guarded by store's own mutex

	store  *ring.Store
	filter *timestampfilter.Filter

	localTimeOffsetSec    float64
	maxAllowedTimeDiffSec float64
	descriptiveName       string
	sessionID             string

	timeStampReportEnabled bool
	timeStampReport        []TimestampReportRow
}

// New constructs a Buffer from a BufferConfig and an initial frame format.
func New(cfg *config.BufferConfig, format frame.FrameFormat) (*Buffer, error) {
	if cfg == nil {
		cfg = config.EmptyBufferConfig()
	}
	store, err := ring.New(cfg.GetCapacity(), format)
	if err != nil {
		return nil, err
	}
	b := &Buffer{
		store:                  store,
		filter:                 timestampfilter.New(cfg.GetAveragedItemsForFiltering()),
		localTimeOffsetSec:     cfg.GetLocalTimeOffsetSec(),
		maxAllowedTimeDiffSec:  cfg.GetMaxAllowedTimeDiffSec(),
		descriptiveName:        cfg.GetDescriptiveName(),
		sessionID:              uuid.NewString(),
		timeStampReportEnabled: cfg.GetTimeStampReportEnabled(),
	}
	return b, nil
}

// SessionID returns the UUID stamped on this buffer instance at
// construction, used to correlate diagnostics across log lines.
func (b *Buffer) SessionID() string {
	return b.sessionID
}

// SetFrameFormat reallocates every slot's pixel buffer, invalidating all
// stored content.
func (b *Buffer) SetFrameFormat(format frame.FrameFormat) {
	b.store.SetFrameFormat(format)
}

// FrameFormat returns the buffer's currently declared frame format.
func (b *Buffer) FrameFormat() frame.FrameFormat {
	return b.store.FrameFormat()
}

// SetCapacity reallocates slot storage to the new capacity, discarding
// content.
func (b *Buffer) SetCapacity(n uint32) error {
	return b.store.Resize(n)
}

// GetCapacity returns the configured slot capacity.
func (b *Buffer) GetCapacity() uint32 {
	return b.store.Capacity()
}

// Clear empties the buffer without reallocating slot storage.
func (b *Buffer) Clear() {
	b.store.Clear()
	b.mu.Lock()
	b.timeStampReport = nil
	b.mu.Unlock()
}

// Size returns the number of currently occupied slots.
func (b *Buffer) Size() uint32 {
	return b.store.Size()
}

// OldestUID returns the oldest occupied UID, or ErrNotAvailableYet if the
// buffer is empty.
func (b *Buffer) OldestUID() (uint64, error) {
	uid, ok := b.store.Oldest()
	if !ok {
		return 0, streamerrors.ErrNotAvailableYet
	}
	return uid, nil
}

// LatestUID returns the latest occupied UID, or ErrNotAvailableYet if the
// buffer is empty.
func (b *Buffer) LatestUID() (uint64, error) {
	uid, ok := b.store.Latest()
	if !ok {
		return 0, streamerrors.ErrNotAvailableYet
	}
	return uid, nil
}

// SetLocalTimeOffsetSec sets the offset applied when interpreting query
// times against the local clock.
func (b *Buffer) SetLocalTimeOffsetSec(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.localTimeOffsetSec = v
}

// GetLocalTimeOffsetSec returns the configured local time offset.
func (b *Buffer) GetLocalTimeOffsetSec() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.localTimeOffsetSec
}

// SetMaxAllowedTimeDifferenceSec sets the largest gap across which
// interpolation is permitted.
func (b *Buffer) SetMaxAllowedTimeDifferenceSec(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maxAllowedTimeDiffSec = v
}

// GetMaxAllowedTimeDifferenceSec returns the configured interpolation
// window.
func (b *Buffer) GetMaxAllowedTimeDifferenceSec() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxAllowedTimeDiffSec
}

// SetAveragedItemsForFiltering resizes the timestamp filter's averaging
// window. Resizing mid-stream truncates older entries and keeps the most
// recent samples.
func (b *Buffer) SetAveragedItemsForFiltering(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.SetWindowSize(n)
}

// GetAveragedItemsForFiltering returns the configured filter window length.
func (b *Buffer) GetAveragedItemsForFiltering() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter.WindowSize()
}

// SetStartTime records the nominal start time of the stream for the
// timestamp filter.
func (b *Buffer) SetStartTime(t float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.SetStartTime(t)
}

// SetTimeStampReporting enables or disables the append-only diagnostic
// table of caller-supplied (index, unfiltered, filtered) timestamp rows.
func (b *Buffer) SetTimeStampReporting(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeStampReportEnabled = enabled
	if !enabled {
		b.timeStampReport = nil
	}
}

// TimeStampReport returns a copy of the current diagnostic table.
func (b *Buffer) TimeStampReport() []TimestampReportRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]TimestampReportRow, len(b.timeStampReport))
	copy(out, b.timeStampReport)
	return out
}

func (b *Buffer) recordReportRow(index uint64, unfiltered, filtered float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timeStampReportEnabled {
		b.timeStampReport = append(b.timeStampReport, TimestampReportRow{
			Index:        index,
			UnfilteredTS: unfiltered,
			FilteredTS:   filtered,
		})
	}
}

// resolveTimestamps implements the timestamp derivation contract shared by
// all three admission entry points: if unfilteredTS is absent it samples
// the monotonic clock; if filteredTS is absent it invokes the timestamp
// filter; if the caller supplied filteredTS directly, the filter is
// bypassed, the sample is treated as valid, and it is recorded in the
// report table when reporting is enabled.
func (b *Buffer) resolveTimestamps(index uint64, unfilteredTS, filteredTS *float64) (unfiltered, filtered float64, ok bool) {
	if unfilteredTS != nil {
		unfiltered = *unfilteredTS
	} else {
		unfiltered = float64(time.Now().UnixNano()) / 1e9
	}

	if filteredTS != nil {
		filtered = *filteredTS
		b.recordReportRow(index, unfiltered, filtered)
		return unfiltered, filtered, true
	}

	b.mu.Lock()
	filtered, valid := b.filter.Filter(index, unfiltered)
	b.mu.Unlock()
	if !valid {
		monitoring.Debugf("stream buffer %s: dropping index=%d unfiltered_ts=%f: timestamp filter rejected sample", b.sessionID, index, unfiltered)
		return 0, 0, false
	}
	return unfiltered, filtered, true
}

// HasLatestValidVideoData reports whether the most recently admitted slot
// carries valid video content.
func (b *Buffer) HasLatestValidVideoData() bool {
	uid, ok := b.store.Latest()
	if !ok {
		return false
	}
	item, err := b.store.UIDToSlot(uid)
	if err != nil {
		return false
	}
	return item.ValidVideo
}

// HasLatestValidTransformData reports whether the most recently admitted
// slot carries a valid transform.
func (b *Buffer) HasLatestValidTransformData() bool {
	uid, ok := b.store.Latest()
	if !ok {
		return false
	}
	item, err := b.store.UIDToSlot(uid)
	if err != nil {
		return false
	}
	return item.ValidTransform
}

// HasLatestValidFieldData reports whether the most recently admitted slot
// carries any custom fields.
func (b *Buffer) HasLatestValidFieldData() bool {
	uid, ok := b.store.Latest()
	if !ok {
		return false
	}
	item, err := b.store.UIDToSlot(uid)
	if err != nil {
		return false
	}
	return len(item.Fields) > 0
}

// GetByUID returns a deep copy of the slot for uid.
func (b *Buffer) GetByUID(uid uint64) (frame.StreamItem, error) {
	return b.store.UIDToSlot(uid)
}

// UIDToTimestamp returns the filtered timestamp of the slot for uid.
func (b *Buffer) UIDToTimestamp(uid uint64) (float64, error) {
	item, err := b.store.UIDToSlot(uid)
	if err != nil {
		return 0, err
	}
	return item.FilteredTS, nil
}

// UIDToIndex returns the producer-supplied sequence index of the slot for
// uid.
func (b *Buffer) UIDToIndex(uid uint64) (uint64, error) {
	item, err := b.store.UIDToSlot(uid)
	if err != nil {
		return 0, err
	}
	return item.Index, nil
}

// GetLatestTimestamp returns the filtered timestamp of the most recently
// admitted slot.
func (b *Buffer) GetLatestTimestamp() (float64, error) {
	uid, ok := b.store.Latest()
	if !ok {
		return 0, streamerrors.ErrNotAvailableYet
	}
	return b.UIDToTimestamp(uid)
}

// GetOldestTimestamp returns the filtered timestamp of the oldest occupied
// slot.
func (b *Buffer) GetOldestTimestamp() (float64, error) {
	uid, ok := b.store.Oldest()
	if !ok {
		return 0, streamerrors.ErrNotAvailableYet
	}
	return b.UIDToTimestamp(uid)
}

// TimeToBufferIndex resolves a query time to the UID whose filtered
// timestamp is closest to it (see ring.Store.TimeToUID).
func (b *Buffer) TimeToBufferIndex(t float64) (uint64, error) {
	return b.store.TimeToUID(t)
}

// DeepCopyFrom replaces this buffer's metadata and slot contents with a
// deep copy of other's, reallocating storage to match.
func (b *Buffer) DeepCopyFrom(other *Buffer) {
	format := other.store.FrameFormat()
	b.store.SetFrameFormat(format)
	if err := b.store.Resize(other.store.Capacity()); err != nil {
		monitoring.Logf("buffer: DeepCopyFrom: failed to resize: %v", err)
		return
	}

	b.mu.Lock()
	other.mu.Lock()
	b.localTimeOffsetSec = other.localTimeOffsetSec
	b.maxAllowedTimeDiffSec = other.maxAllowedTimeDiffSec
	b.descriptiveName = other.descriptiveName
	b.timeStampReportEnabled = other.timeStampReportEnabled
	b.timeStampReport = append([]TimestampReportRow(nil), other.timeStampReport...)
	other.mu.Unlock()
	b.mu.Unlock()

	oldest, ok := other.store.Oldest()
	if !ok {
		return
	}
	latest, _ := other.store.Latest()
	for uid := oldest; uid <= latest; uid++ {
		item, err := other.store.UIDToSlot(uid)
		if err != nil {
			continue
		}
		itemCopy := item
		if _, err := b.store.Admit(item.FilteredTS, func(slot *frame.StreamItem) {
			*slot = itemCopy
		}); err != nil {
			monitoring.Logf("buffer: DeepCopyFrom: failed to admit uid=%d: %v", uid, err)
		}
	}
}

// DescriptiveName returns the optional human-readable name for this
// buffer.
func (b *Buffer) DescriptiveName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.descriptiveName
}

// SetDescriptiveName sets the optional human-readable name for this
// buffer.
func (b *Buffer) SetDescriptiveName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.descriptiveName = name
}

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", streamerrors.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
