package vector

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Vector is a contiguous sequence of T. Slots [0, Len()) hold live values,
// slots [Len(), Cap()) are uninitialized. The zero value is an empty vector
// ready to use. A Vector must not be copied by value; use Clone or Take.
//
// Pointers returned by At, Front, Back, PushBack, Insert and friends are
// invalidated by any operation that changes the capacity.
type Vector[T any] struct {
	data RawMemory[T]
	size int
	caps capabilities
}

// New returns an empty vector.
func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewWithSize returns a vector holding n default-constructed elements with
// capacity exactly n.
func NewWithSize[T any](n int) (*Vector[T], error) {
	v := New[T]()
	if err := v.Resize(n); err != nil {
		return nil, err
	}
	return v, nil
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of slots in the underlying buffer.
func (v *Vector[T]) Cap() int {
	return v.data.Capacity()
}

// At returns a pointer to the element at index i.
func (v *Vector[T]) At(i int) *T {
	v.checkIndex(i)
	return v.data.Slot(i)
}

// Get returns a copy of the element at index i, as plain assignment would.
func (v *Vector[T]) Get(i int) T {
	return *v.At(i)
}

// Set move-assigns val into index i, destroying the previous value.
func (v *Vector[T]) Set(i int, val T) {
	p := v.At(i)
	destroyValue(v.ops(), p)
	*p = val
}

// Front returns a pointer to the first element.
func (v *Vector[T]) Front() *T {
	return v.At(0)
}

// Back returns a pointer to the last element.
func (v *Vector[T]) Back() *T {
	return v.At(v.size - 1)
}

// Reserve grows the capacity to at least n. Growth is all-or-nothing unless
// StrongGrowthGuarantee[T] is false.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.Cap() {
		return nil
	}
	return v.relocate(n, v.size, nil)
}

// Resize destroys trailing elements or default-constructs new ones until
// the vector holds n elements. If constructing a new element fails, the
// elements constructed by this call are destroyed and the size is unchanged.
func (v *Vector[T]) Resize(n int) error {
	if n < 0 {
		panic(fmt.Sprintf("vector: negative size %d", n))
	}
	if n == v.size {
		return nil
	}
	if n < v.size {
		for v.size > n {
			v.destroySlot(&v.data, v.size-1)
			v.size--
		}
		return nil
	}

	if err := v.Reserve(n); err != nil {
		return err
	}
	for i := v.size; i < n; i++ {
		if err := v.initSlot(i); err != nil {
			for j := i - 1; j >= v.size; j-- {
				v.destroySlot(&v.data, j)
			}
			return errors.Wrapf(err, "vector: default-constructing element %d", i)
		}
	}
	v.size = n
	return nil
}

// PushBack appends val and returns a pointer to it.
func (v *Vector[T]) PushBack(val T) (*T, error) {
	return v.EmplaceBack(func(p *T) error {
		*p = val
		return nil
	})
}

// EmplaceBack appends an element built by ctor in its final slot. ctor
// receives a zeroed slot; when it fails it must leave nothing that needs
// destroying. When the vector is full the capacity doubles, and the new
// element is built before any existing element is transferred.
func (v *Vector[T]) EmplaceBack(ctor func(*T) error) (*T, error) {
	if v.size == v.Cap() {
		n, err := v.grownCap()
		if err != nil {
			return nil, err
		}
		if err := v.relocate(n, v.size, ctor); err != nil {
			return nil, err
		}
	} else if err := v.construct(&v.data, v.size, ctor); err != nil {
		return nil, err
	}
	v.size++
	return v.data.Slot(v.size - 1), nil
}

// PopBack destroys the last element. It panics on an empty vector.
func (v *Vector[T]) PopBack() {
	if v.size == 0 {
		panic("vector: PopBack on empty vector")
	}
	v.destroySlot(&v.data, v.size-1)
	v.size--
}

// Insert places val before index pos (0 <= pos <= Len()) and returns a
// pointer to it.
func (v *Vector[T]) Insert(pos int, val T) (*T, error) {
	return v.Emplace(pos, func(p *T) error {
		*p = val
		return nil
	})
}

// Emplace inserts an element built by ctor before index pos.
//
// With spare capacity the new value is built in a temporary, the tail is
// shifted right one slot and the temporary is moved into place. A failed
// move during that shift leaves every slot live but the order partially
// shifted. When the vector is full, the element is built directly in the new
// buffer and its neighbours are transferred around it with the same
// guarantee as Reserve.
func (v *Vector[T]) Emplace(pos int, ctor func(*T) error) (*T, error) {
	if pos < 0 || pos > v.size {
		panic(fmt.Sprintf("vector: insert position %d out of range [0:%d]", pos, v.size))
	}

	switch {
	case v.size == v.Cap():
		n, err := v.grownCap()
		if err != nil {
			return nil, err
		}
		if err := v.relocate(n, pos, ctor); err != nil {
			return nil, err
		}
		v.size++
	case pos == v.size:
		if err := v.construct(&v.data, v.size, ctor); err != nil {
			return nil, err
		}
		v.size++
	default:
		if err := v.shiftInsert(pos, ctor); err != nil {
			return nil, err
		}
	}
	return v.data.Slot(pos), nil
}

func (v *Vector[T]) shiftInsert(pos int, ctor func(*T) error) error {
	c := v.ops()
	var tmp T
	if err := ctor(&tmp); err != nil {
		return errors.Wrap(err, "vector: constructing element")
	}

	last, err := moveOut(c, v.data.Slot(v.size-1))
	if err != nil {
		destroyValue(c, &tmp)
		return errors.Wrapf(err, "vector: moving element %d", v.size-1)
	}
	v.place(&v.data, v.size, last)
	v.size++

	for i := v.size - 2; i > pos; i-- {
		if err := moveAssign(c, v.data.Slot(i), v.data.Slot(i-1)); err != nil {
			destroyValue(c, &tmp)
			return errors.Wrapf(err, "vector: shifting element %d", i-1)
		}
	}
	if err := moveAssign(c, v.data.Slot(pos), &tmp); err != nil {
		destroyValue(c, &tmp)
		return errors.Wrap(err, "vector: moving inserted element")
	}
	destroyValue(c, &tmp)
	return nil
}

// Erase removes the element at pos and returns the index of the element
// that now occupies it; that equals Len() when the last element was
// removed. A failed move while shifting leaves every slot live and the size
// unchanged.
func (v *Vector[T]) Erase(pos int) (int, error) {
	v.checkIndex(pos)
	c := v.ops()
	for i := pos; i < v.size-1; i++ {
		if err := moveAssign(c, v.data.Slot(i), v.data.Slot(i+1)); err != nil {
			return pos, errors.Wrapf(err, "vector: shifting element %d", i+1)
		}
	}
	v.destroySlot(&v.data, v.size-1)
	v.size--
	return pos, nil
}

// Clear destroys all elements and keeps the capacity.
func (v *Vector[T]) Clear() {
	for v.size > 0 {
		v.destroySlot(&v.data, v.size-1)
		v.size--
	}
}

// Release destroys all elements and frees the buffer. The vector is empty
// and usable afterwards.
func (v *Vector[T]) Release() {
	v.Clear()
	v.data.Deallocate()
}

// Clone returns a deep copy with capacity exactly Len(). Elements are copied
// with Copier when T implements it. If a copy fails, the partial copy is
// destroyed and v is unchanged.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	m, err := NewRawMemory[T](v.size)
	if err != nil {
		return nil, err
	}
	c := v.ops()
	for i := 0; i < v.size; i++ {
		val, err := copyOf(c, v.data.Slot(i))
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				v.destroySlot(m, j)
			}
			m.Deallocate()
			return nil, errors.Wrapf(err, "vector: copying element %d", i)
		}
		v.place(m, i, val)
	}
	out := &Vector[T]{size: v.size, caps: c}
	out.data.Swap(m)
	return out, nil
}

// Take moves the contents into a new vector and leaves v empty with no
// buffer.
func (v *Vector[T]) Take() *Vector[T] {
	out := New[T]()
	out.MoveFrom(v)
	return out
}

// MoveFrom releases the contents of v and adopts the buffer of src, leaving
// src empty.
func (v *Vector[T]) MoveFrom(src *Vector[T]) {
	if src == v {
		return
	}
	v.Release()
	v.data.Swap(&src.data)
	v.size, src.size = src.size, 0
}

// Assign replaces the contents of v with copies of the elements of src.
// When src does not fit in the current capacity v is rebuilt from a clone
// and either changes completely or not at all; otherwise elements are
// copy-assigned in place and a failed copy leaves a consistent mix of old
// and new values.
func (v *Vector[T]) Assign(src *Vector[T]) error {
	if src == v {
		return nil
	}
	if src.size > v.Cap() {
		cp, err := src.Clone()
		if err != nil {
			return err
		}
		v.Swap(cp)
		cp.Release()
		return nil
	}

	c := v.ops()
	common := min(v.size, src.size)
	for i := 0; i < common; i++ {
		val, err := copyOf(c, src.data.Slot(i))
		if err != nil {
			return errors.Wrapf(err, "vector: copying element %d", i)
		}
		p := v.data.Slot(i)
		destroyValue(c, p)
		*p = val
	}
	for v.size > src.size {
		v.destroySlot(&v.data, v.size-1)
		v.size--
	}
	for v.size < src.size {
		val, err := copyOf(c, src.data.Slot(v.size))
		if err != nil {
			return errors.Wrapf(err, "vector: copying element %d", v.size)
		}
		v.place(&v.data, v.size, val)
		v.size++
	}
	return nil
}

// Swap exchanges the contents of v and other.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data.Swap(&other.data)
	v.size, other.size = other.size, v.size
}

// relocate moves the live range into a new buffer of capacity n. When ctor
// is not nil a new element is built at gap first and the elements from gap
// onwards land one slot further right. On any failure the new buffer is
// torn down and v is left as it was.
func (v *Vector[T]) relocate(n, gap int, ctor func(*T) error) error {
	nd, err := NewRawMemory[T](n)
	if err != nil {
		return err
	}

	shift := 0
	if ctor != nil {
		if err := v.construct(nd, gap, ctor); err != nil {
			nd.Deallocate()
			return err
		}
		shift = 1
	}
	abort := func(built int, err error) error {
		for j := built - 1; j >= 0; j-- {
			v.destroySlot(nd, j)
		}
		if shift == 1 {
			v.destroySlot(nd, gap)
		}
		nd.Deallocate()
		return err
	}

	if done, err := v.transfer(nd, 0, 0, gap); err != nil {
		return abort(done, err)
	}
	if done, err := v.transfer(nd, gap+shift, gap, v.size); err != nil {
		for j := gap + shift + done - 1; j >= gap+shift; j-- {
			v.destroySlot(nd, j)
		}
		return abort(gap, err)
	}

	oldCap := v.Cap()
	v.data.Swap(nd)
	// nd holds the old span now; its live slots are moved-from or copied-from.
	for j := v.size - 1; j >= 0; j-- {
		v.destroySlot(nd, j)
	}
	nd.Deallocate()

	level.Debug(currentLogger()).Log("msg", "vector buffer grown", "from", oldCap, "to", n, "bytes", humanize.IBytes(v.data.bytes))
	return nil
}

// transfer builds src slots [from, to) of v into dst starting at at. It
// returns how many slots it built; on error the caller owns their teardown.
func (v *Vector[T]) transfer(dst *RawMemory[T], at, from, to int) (int, error) {
	c := v.ops()
	mode := c.transfer()
	for i := from; i < to; i++ {
		var (
			val T
			err error
		)
		if mode == transferCopy {
			val, err = copyOf(c, v.data.Slot(i))
		} else {
			val, err = moveOut(c, v.data.Slot(i))
		}
		if err != nil {
			return i - from, errors.Wrapf(err, "vector: transferring element %d", i)
		}
		v.place(dst, at+i-from, val)
	}
	return to - from, nil
}

func (v *Vector[T]) grownCap() (int, error) {
	c := v.Cap()
	if c == 0 {
		return 1, nil
	}
	if c > math.MaxInt/2 {
		return 0, allocFailed(c, math.MaxUint64, errors.Wrapf(ErrAllocation, "cannot double capacity %d", c))
	}
	return c * 2, nil
}

func (v *Vector[T]) ops() capabilities {
	if !v.caps.known {
		v.caps = capabilitiesOf[T]()
	}
	return v.caps
}

func (v *Vector[T]) place(m *RawMemory[T], i int, val T) {
	*m.Slot(i) = val
	m.markLive(i)
}

func (v *Vector[T]) construct(m *RawMemory[T], i int, ctor func(*T) error) error {
	p := m.Slot(i)
	if err := ctor(p); err != nil {
		var zero T
		*p = zero
		return errors.Wrap(err, "vector: constructing element")
	}
	m.markLive(i)
	return nil
}

func (v *Vector[T]) initSlot(i int) error {
	p := v.data.Slot(i)
	var zero T
	*p = zero
	if v.ops().init {
		if err := any(p).(Initializer).Init(); err != nil {
			*p = zero
			return err
		}
	}
	v.data.markLive(i)
	return nil
}

func (v *Vector[T]) destroySlot(m *RawMemory[T], i int) {
	p := m.Slot(i)
	destroyValue(v.ops(), p)
	var zero T
	*p = zero
	m.markUninit(i)
}

func (v *Vector[T]) checkIndex(i int) {
	if i < 0 || i >= v.size {
		panic(fmt.Sprintf("vector: index %d out of range [0:%d]", i, v.size))
	}
}
