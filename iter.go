package vector

import "iter"

// All returns an iterator over index/value pairs of the live range. The
// range is re-read on every call, so the iterator may be reused after the
// vector changes.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, *v.data.Slot(i)) {
				return
			}
		}
	}
}

// Values returns an iterator over the live values in order.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(*v.data.Slot(i)) {
				return
			}
		}
	}
}

// Backward returns an iterator over index/value pairs from the last element
// to the first.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := v.size - 1; i >= 0; i-- {
			if !yield(i, *v.data.Slot(i)) {
				return
			}
		}
	}
}
