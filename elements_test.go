package vector

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	errCopy = errors.New("copy failed")
	errMove = errors.New("move failed")
	errInit = errors.New("init failed")
)

// lifecycle counts what happened to the tracked values sharing it.
type lifecycle struct {
	live      int
	copies    int
	moves     int
	inits     int
	destroyed int

	// failCopyAt, failMoveAt and failInitAt make the Nth call (1-based,
	// counted over the lifecycle) fail. Zero never fails.
	failCopyAt int
	failMoveAt int
	failInitAt int
}

// tracked has a copy, a fallible move and a destructor. Its moved-from
// state has a nil lc.
type tracked struct {
	val int
	lc  *lifecycle
}

func newTracked(lc *lifecycle, val int) tracked {
	lc.live++
	return tracked{val: val, lc: lc}
}

func (t *tracked) Copy() (tracked, error) {
	if t.lc == nil {
		return tracked{}, nil
	}
	t.lc.copies++
	if t.lc.failCopyAt > 0 && t.lc.copies == t.lc.failCopyAt {
		return tracked{}, errCopy
	}
	t.lc.live++
	return tracked{val: t.val, lc: t.lc}, nil
}

func (t *tracked) Move() (tracked, error) {
	if t.lc == nil {
		return tracked{}, nil
	}
	t.lc.moves++
	if t.lc.failMoveAt > 0 && t.lc.moves == t.lc.failMoveAt {
		return tracked{}, errMove
	}
	out := *t
	*t = tracked{}
	return out, nil
}

func (t *tracked) Destroy() {
	if t.lc == nil {
		return
	}
	t.lc.live--
	t.lc.destroyed++
	t.lc = nil
}

// defaults counts default constructions of defaulted values when set.
var defaults *lifecycle

// defaulted is default-constructed through Init.
type defaulted struct {
	val int
	lc  *lifecycle
}

func (d *defaulted) Init() error {
	d.val = 42
	if defaults == nil {
		return nil
	}
	defaults.inits++
	if defaults.failInitAt > 0 && defaults.inits == defaults.failInitAt {
		return errInit
	}
	defaults.live++
	d.lc = defaults
	return nil
}

func (d *defaulted) Destroy() {
	if d.lc == nil {
		return
	}
	d.lc.live--
	d.lc.destroyed++
	d.lc = nil
}

// moveOnly has a fallible move and no copy.
type moveOnly struct {
	val int
	lc  *lifecycle
}

func (m *moveOnly) Move() (moveOnly, error) {
	if m.lc != nil {
		m.lc.moves++
		if m.lc.failMoveAt > 0 && m.lc.moves == m.lc.failMoveAt {
			return moveOnly{}, errMove
		}
	}
	out := *m
	*m = moveOnly{}
	return out, nil
}

// safeBox moves through MoveSafe and counts the moves.
type safeBox struct {
	val   int
	moves *int
}

func (b *safeBox) MoveSafe() safeBox {
	if b.moves != nil {
		*b.moves++
	}
	out := *b
	b.val = -1
	return out
}

// registry hands out handles and panics when one is released twice.
type registry struct {
	next int
	open map[int]bool
}

func newRegistry() *registry {
	return &registry{open: map[int]bool{}}
}

func (r *registry) acquire() handle {
	r.next++
	r.open[r.next] = true
	return handle{id: r.next, reg: r}
}

// handle has a destructor only; it is moved bitwise.
type handle struct {
	id  int
	reg *registry
}

func (h *handle) Destroy() {
	if h.reg == nil {
		return
	}
	if !h.reg.open[h.id] {
		panic(fmt.Sprintf("handle %d released twice", h.id))
	}
	delete(h.reg.open, h.id)
}

func trackedValues(v *Vector[tracked]) []int {
	out := make([]int, 0, v.Len())
	for _, t := range v.All() {
		out = append(out, t.val)
	}
	return out
}

func values[T any](v *Vector[T]) []T {
	out := make([]T, 0, v.Len())
	for x := range v.Values() {
		out = append(out, x)
	}
	return out
}
