package vector

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// ErrAllocation is returned (wrapped) when a buffer cannot be allocated.
var ErrAllocation = errors.New("vector: allocation failed")

type slotState uint8

const (
	slotUninit slotState = iota
	slotLive
)

// RawMemory owns a span of slots for capacity elements of type T. It never
// constructs or destroys elements: which slots hold live values is the
// owner's business. A RawMemory must not be copied; use Take or Swap to
// move ownership.
type RawMemory[T any] struct {
	buf   []T
	bytes uint64

	// states annotates each slot in vectordebug builds only.
	states []slotState
}

// NewRawMemory allocates a span for capacity elements. A capacity of zero
// yields a null span without allocating. On failure no span is produced and
// the returned error wraps ErrAllocation.
func NewRawMemory[T any](capacity int) (*RawMemory[T], error) {
	m := &RawMemory[T]{}
	if err := m.allocate(capacity); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RawMemory[T]) allocate(capacity int) (err error) {
	if capacity < 0 {
		panic(fmt.Sprintf("vector: negative capacity %d", capacity))
	}
	if capacity == 0 {
		return nil
	}

	var zero T
	elemSize := uint64(unsafe.Sizeof(zero))
	if elemSize != 0 && uint64(capacity) > math.MaxInt64/elemSize {
		return allocFailed(capacity, math.MaxUint64, errors.Wrapf(ErrAllocation, "%d slots of %d bytes overflow the address space", capacity, elemSize))
	}
	total := elemSize * uint64(capacity)
	if limit := maxAllocBytes.Load(); limit > 0 && total > limit {
		return allocFailed(capacity, total, errors.Wrapf(ErrAllocation, "%s exceeds the %s allocation limit", humanize.IBytes(total), humanize.IBytes(limit)))
	}

	defer func() {
		// make panics rather than returning when the runtime refuses the size.
		if r := recover(); r != nil {
			err = allocFailed(capacity, total, errors.Wrapf(ErrAllocation, "%v", r))
		}
	}()
	m.buf = make([]T, capacity)
	m.bytes = total
	if debugChecks {
		m.states = make([]slotState, capacity)
	}
	stats.allocated(total)
	return nil
}

func allocFailed(capacity int, total uint64, err error) error {
	stats.failed()
	fields := []interface{}{"msg", "buffer allocation failed", "slots", capacity, "err", err}
	if total != math.MaxUint64 {
		fields = append(fields, "bytes", humanize.IBytes(total))
	}
	level.Warn(currentLogger()).Log(fields...)
	return err
}

// Deallocate releases the span. It is a no-op on a null span and does not
// run element destructors.
func (m *RawMemory[T]) Deallocate() {
	if m.buf == nil {
		return
	}
	if debugChecks {
		if n := m.liveSlots(); n > 0 {
			panic(fmt.Sprintf("vector: deallocating span with %d live slots", n))
		}
	}
	stats.released(m.bytes)
	m.buf = nil
	m.bytes = 0
	m.states = nil
}

// Capacity returns the number of slots in the span.
func (m *RawMemory[T]) Capacity() int {
	return len(m.buf)
}

// Slot returns the slot at offset. The offset is checked against the
// capacity, not against the number of live elements.
func (m *RawMemory[T]) Slot(offset int) *T {
	if offset < 0 || offset >= len(m.buf) {
		panic(fmt.Sprintf("vector: slot %d out of range [0:%d]", offset, len(m.buf)))
	}
	return &m.buf[offset]
}

// Swap exchanges the spans of m and other.
func (m *RawMemory[T]) Swap(other *RawMemory[T]) {
	*m, *other = *other, *m
}

// Take transfers ownership of the span to a new RawMemory and leaves m null.
func (m *RawMemory[T]) Take() *RawMemory[T] {
	t := &RawMemory[T]{}
	t.Swap(m)
	return t
}

func (m *RawMemory[T]) markLive(i int) {
	if !debugChecks {
		return
	}
	if m.states[i] == slotLive {
		panic(fmt.Sprintf("vector: constructing over live slot %d", i))
	}
	m.states[i] = slotLive
}

func (m *RawMemory[T]) markUninit(i int) {
	if !debugChecks {
		return
	}
	if m.states[i] != slotLive {
		panic(fmt.Sprintf("vector: destroying uninitialized slot %d", i))
	}
	m.states[i] = slotUninit
}

func (m *RawMemory[T]) liveSlots() int {
	n := 0
	for _, s := range m.states {
		if s == slotLive {
			n++
		}
	}
	return n
}
