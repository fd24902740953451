package vector

// Element types opt into lifetime hooks by implementing the interfaces below
// on *T. A type that implements none of them is constructed as its zero
// value, copied and moved bitwise, and needs no destruction.

// Initializer is implemented by types that need more than the zero value to
// be default-constructed. Init runs on a zeroed slot.
type Initializer interface {
	Init() error
}

// Copier is implemented by types whose copy is not a plain value copy.
type Copier[T any] interface {
	Copy() (T, error)
}

// Mover is implemented by types whose move can fail. Move returns the moved
// value and leaves the receiver in a moved-from state.
type Mover[T any] interface {
	Move() (T, error)
}

// SafeMover is implemented by types with a custom move that cannot fail.
type SafeMover[T any] interface {
	MoveSafe() T
}

// Destroyer is implemented by types that release resources on destruction.
// Destroy is also called on moved-from values; for a type without Mover or
// SafeMover the moved-from value is the zero value.
type Destroyer interface {
	Destroy()
}

type transferMode uint8

const (
	transferBitwise transferMode = iota
	transferSafeMove
	transferCopy
	transferMove
)

type capabilities struct {
	known    bool
	init     bool
	copy     bool
	move     bool
	safeMove bool
	destroy  bool
}

func capabilitiesOf[T any]() capabilities {
	var zero T
	p := any(&zero)
	c := capabilities{known: true}
	_, c.init = p.(Initializer)
	_, c.copy = p.(Copier[T])
	_, c.move = p.(Mover[T])
	_, c.safeMove = p.(SafeMover[T])
	_, c.destroy = p.(Destroyer)
	return c
}

// transfer picks how live elements reach a new buffer on growth: move when
// moving cannot fail, copy when moving can fail and a copy exists, and a
// fallible move only as the last resort.
func (c capabilities) transfer() transferMode {
	switch {
	case c.safeMove:
		return transferSafeMove
	case c.move && c.copy:
		return transferCopy
	case c.move:
		return transferMove
	default:
		return transferBitwise
	}
}

// StrongGrowthGuarantee reports whether growth of a Vector[T] either
// completes or leaves the vector unchanged. It is false only for types that
// implement Mover but neither SafeMover nor Copier.
func StrongGrowthGuarantee[T any]() bool {
	return capabilitiesOf[T]().transfer() != transferMove
}

// moveOut moves the value out of *p, leaving *p moved-from.
func moveOut[T any](c capabilities, p *T) (T, error) {
	switch {
	case c.safeMove:
		return any(p).(SafeMover[T]).MoveSafe(), nil
	case c.move:
		return any(p).(Mover[T]).Move()
	default:
		v := *p
		var zero T
		*p = zero
		return v, nil
	}
}

func copyOf[T any](c capabilities, p *T) (T, error) {
	if c.copy {
		return any(p).(Copier[T]).Copy()
	}
	return *p, nil
}

func destroyValue[T any](c capabilities, p *T) {
	if c.destroy {
		any(p).(Destroyer).Destroy()
	}
}

// moveAssign moves *src into the live value *dst, destroying what *dst held.
// On failure *dst is untouched.
func moveAssign[T any](c capabilities, dst, src *T) error {
	v, err := moveOut(c, src)
	if err != nil {
		return err
	}
	destroyValue(c, dst)
	*dst = v
	return nil
}
