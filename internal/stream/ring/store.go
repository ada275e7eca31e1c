// Package ring implements the fixed-capacity, preallocated circular slot
// store at the heart of the stream buffer: it assigns monotonically
// increasing UIDs to admitted items and serializes all mutation and
// inspection behind a single mutex.
package ring

import (
	"fmt"
	"sync"

	"github.com/plustoolkit/streambuffer/internal/stream/frame"
	"github.com/plustoolkit/streambuffer/internal/stream/streamerrors"
)

// Store is the fixed-capacity circular array of pre-allocated slots.
type Store struct {
	mu sync.Mutex

	slots     []frame.StreamItem
	format    frame.FrameFormat
	capacity  uint32
	writeHead uint32
	nextUID   uint64
	oldestUID uint64
	latestUID uint64
	size      uint32
	hasItems  bool
}

// New returns a Store with the given capacity and initial frame format.
// capacity must be > 0.
func New(capacity uint32, format frame.FrameFormat) (*Store, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0", streamerrors.ErrInvalidArgument)
	}
	s := &Store{nextUID: 0}
	s.allocate(capacity, format)
	return s, nil
}

// allocate must be called with the lock held (or during construction,
// before the Store escapes).
func (s *Store) allocate(capacity uint32, format frame.FrameFormat) {
	s.slots = make([]frame.StreamItem, capacity)
	for i := range s.slots {
		s.slots[i] = frame.NewStreamItem(format)
	}
	s.format = format
	s.capacity = capacity
	s.writeHead = 0
	s.size = 0
	s.hasItems = false
}

// Resize reallocates slot storage, discarding all content. Fails if
// newCapacity == 0.
func (s *Store) Resize(newCapacity uint32) error {
	if newCapacity == 0 {
		return fmt.Errorf("%w: capacity must be > 0", streamerrors.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocate(newCapacity, s.format)
	return nil
}

// SetFrameFormat reallocates every slot's pixel buffer to the new format,
// invalidating all stored content.
func (s *Store) SetFrameFormat(format frame.FrameFormat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocate(s.capacity, format)
}

// FrameFormat returns the format every slot currently conforms to.
func (s *Store) FrameFormat() frame.FrameFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Capacity returns the configured slot capacity.
func (s *Store) Capacity() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// Clear empties the ring without reallocating slot storage.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeHead = 0
	s.size = 0
	s.hasItems = false
	s.oldestUID = 0
	s.latestUID = 0
}

// Size returns the number of currently occupied slots.
func (s *Store) Size() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Oldest returns the oldest occupied UID and whether any item exists.
func (s *Store) Oldest() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oldestUID, s.hasItems
}

// Latest returns the latest occupied UID and whether any item exists.
func (s *Store) Latest() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestUID, s.hasItems
}

// Admit validates the candidate filtered timestamp against the current
// latest slot, assigns a UID and ring position, and invokes populate with
// exclusive access to the slot so the caller can write into its
// preallocated storage before the lock is released. The lock is held for
// the full duration of admission, including populate, matching the
// single-writer/multiple-reader contract of the buffer.
func (s *Store) Admit(filteredTS float64, populate func(slot *frame.StreamItem)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasItems {
		latest := &s.slots[s.latestPosLocked()]
		if filteredTS <= latest.FilteredTS {
			return 0, streamerrors.ErrTimestampRegression
		}
	}

	uid := s.nextUID
	s.nextUID++
	pos := s.writeHead
	s.writeHead = (s.writeHead + 1) % s.capacity

	slot := &s.slots[pos]
	slot.Reinit(s.format)
	slot.UID = uid
	slot.FilteredTS = filteredTS
	if populate != nil {
		populate(slot)
	}

	if !s.hasItems {
		s.oldestUID = uid
		s.hasItems = true
	}
	s.latestUID = uid
	if s.size < s.capacity {
		s.size++
	} else {
		s.oldestUID = s.latestUID - uint64(s.capacity) + 1
	}

	return uid, nil
}

func (s *Store) latestPosLocked() uint32 {
	if s.writeHead == 0 {
		return s.capacity - 1
	}
	return s.writeHead - 1
}

// posForUID maps an occupied uid to its slot index. Caller must hold the
// lock and must have already verified uid is within [oldestUID, latestUID].
func (s *Store) posForUID(uid uint64) uint32 {
	offsetFromLatest := s.latestUID - uid
	latestPos := s.latestPosLocked()
	// Walk backwards from latestPos by offsetFromLatest, wrapping modulo
	// capacity.
	diff := uint32(offsetFromLatest % uint64(s.capacity))
	if diff > latestPos {
		return s.capacity - (diff - latestPos)
	}
	return latestPos - diff
}

// UIDToSlot returns a deep copy of the slot for uid, or an error
// distinguishing NotAvailableYet (uid beyond latest) from
// NotAvailableAnymore (uid below oldest, already overwritten).
func (s *Store) UIDToSlot(uid uint64) (frame.StreamItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasItems || uid > s.latestUID {
		return frame.StreamItem{}, streamerrors.ErrNotAvailableYet
	}
	if uid < s.oldestUID {
		return frame.StreamItem{}, streamerrors.ErrNotAvailableAnymore
	}

	pos := s.posForUID(uid)
	return s.slots[pos].DeepCopy(), nil
}

// TimeToUID performs a binary search over the occupied UID range on
// filtered timestamps (which are enforced non-decreasing by Admit) and
// returns the UID whose timestamp is closest to t. Ties are broken toward
// the later UID.
func (s *Store) TimeToUID(t float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasItems {
		return 0, streamerrors.ErrNotAvailableYet
	}

	lo, hi := s.oldestUID, s.latestUID
	for lo < hi {
		mid := lo + (hi-lo)/2
		midTS := s.slots[s.posForUID(mid)].FilteredTS
		if midTS < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	// lo is the first uid whose timestamp is >= t (or latestUID if none).
	candidate := lo
	if candidate > s.oldestUID {
		prevTS := s.slots[s.posForUID(candidate-1)].FilteredTS
		curTS := s.slots[s.posForUID(candidate)].FilteredTS
		if curTS != t && candidate < s.latestUID+1 {
			// Compare candidate-1 and candidate distances; tie goes to the
			// later (greater) UID.
			if absFloat(prevTS-t) < absFloat(curTS-t) {
				candidate = candidate - 1
			}
		}
	}
	if candidate > s.latestUID {
		candidate = s.latestUID
	}

	return candidate, nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
