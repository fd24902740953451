package vector

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errCtor = errors.New("ctor failed")

func failingCtor[T any](*T) error {
	return errCtor
}

// fullTracked returns a tracked vector holding 1..n with Len() == Cap().
func fullTracked(t *testing.T, lc *lifecycle, n int) *Vector[tracked] {
	t.Helper()
	v := New[tracked]()
	require.NoError(t, v.Reserve(n))
	for i := 1; i <= n; i++ {
		_, err := v.PushBack(newTracked(lc, i))
		require.NoError(t, err)
	}
	require.Equal(t, n, v.Cap())
	return v
}

func TestStrongGrowthGuarantee(t *testing.T) {
	require.True(t, StrongGrowthGuarantee[int]())
	require.True(t, StrongGrowthGuarantee[handle]())
	require.True(t, StrongGrowthGuarantee[tracked]())
	require.True(t, StrongGrowthGuarantee[safeBox]())
	require.False(t, StrongGrowthGuarantee[moveOnly]())
}

func TestGrowthCopyFailureLeavesVectorUnchanged(t *testing.T) {
	grow := map[string]func(v *Vector[tracked], lc *lifecycle) error{
		"PushBack": func(v *Vector[tracked], lc *lifecycle) error {
			_, err := v.PushBack(newTracked(lc, 5))
			return err
		},
		"Insert": func(v *Vector[tracked], lc *lifecycle) error {
			_, err := v.Insert(2, newTracked(lc, 5))
			return err
		},
		"Reserve": func(v *Vector[tracked], _ *lifecycle) error {
			return v.Reserve(32)
		},
		"Resize": func(v *Vector[tracked], _ *lifecycle) error {
			return v.Resize(9)
		},
	}

	for name, op := range grow {
		for failAt := 1; failAt <= 4; failAt++ {
			lc := &lifecycle{}
			v := fullTracked(t, lc, 4)
			before := AllocMetrics()
			lc.failCopyAt = lc.copies + failAt

			err := op(v, lc)
			require.ErrorIs(t, err, errCopy, "%s fail at %d", name, failAt)
			require.Equal(t, 4, v.Len(), name)
			require.Equal(t, 4, v.Cap(), name)
			require.Equal(t, []int{1, 2, 3, 4}, trackedValues(v), name)
			require.Equal(t, 4, lc.live, "%s leaked or double destroyed", name)

			after := AllocMetrics()
			require.Equal(t, before.BytesInUse, after.BytesInUse, name)
			require.Equal(t, after.Allocations-before.Allocations, after.Deallocations-before.Deallocations, name)

			lc.failCopyAt = 0
			require.NoError(t, op(v, lc), name)
			v.Release()
			require.Equal(t, 0, lc.live, name)
		}
	}
}

func TestGrowthCtorFailureLeavesVectorUnchanged(t *testing.T) {
	lc := &lifecycle{}
	v := fullTracked(t, lc, 4)
	defer v.Release()
	copies := lc.copies

	_, err := v.EmplaceBack(failingCtor[tracked])
	require.ErrorIs(t, err, errCtor)
	_, err = v.Emplace(1, failingCtor[tracked])
	require.ErrorIs(t, err, errCtor)

	require.Equal(t, 4, v.Cap())
	require.Equal(t, []int{1, 2, 3, 4}, trackedValues(v))
	require.Equal(t, copies, lc.copies, "no element may be transferred before the new one exists")
	require.Equal(t, 4, lc.live)
}

func TestInPlaceCtorFailureLeavesVectorUnchanged(t *testing.T) {
	lc := &lifecycle{}
	v := fullTracked(t, lc, 4)
	defer v.Release()
	require.NoError(t, v.Reserve(8))

	for _, pos := range []int{0, 2, 4} {
		_, err := v.Emplace(pos, failingCtor[tracked])
		require.ErrorIs(t, err, errCtor)
	}
	_, err := v.EmplaceBack(failingCtor[tracked])
	require.ErrorIs(t, err, errCtor)

	require.Equal(t, []int{1, 2, 3, 4}, trackedValues(v))
	require.Equal(t, 4, lc.live)
}

func TestShiftMoveFailureKeepsSlotsConsistent(t *testing.T) {
	t.Run("Erase", func(t *testing.T) {
		lc := &lifecycle{}
		v := fullTracked(t, lc, 5)
		lc.failMoveAt = lc.moves + 2

		_, err := v.Erase(0)
		require.ErrorIs(t, err, errMove)
		require.Equal(t, 5, v.Len())
		// Element 1 was destroyed by the first shift, slot 1 is moved-from.
		require.Equal(t, []int{2, 0, 3, 4, 5}, trackedValues(v))
		require.Equal(t, 4, lc.live)

		v.Release()
		require.Equal(t, 0, lc.live)
	})

	t.Run("Insert", func(t *testing.T) {
		lc := &lifecycle{}
		v := fullTracked(t, lc, 5)
		require.NoError(t, v.Reserve(10))
		// The first move fills the tail slot, the second shift fails.
		lc.failMoveAt = lc.moves + 3

		_, err := v.Insert(0, newTracked(lc, 9))
		require.ErrorIs(t, err, errMove)
		require.Equal(t, 6, v.Len())
		require.Equal(t, []int{1, 2, 3, 0, 4, 5}, trackedValues(v))
		require.Equal(t, 5, lc.live)

		v.Release()
		require.Equal(t, 0, lc.live)
	})
}

func TestMoveOnlyGrowthFailureKeepsSize(t *testing.T) {
	lc := &lifecycle{}
	v := New[moveOnly]()
	defer v.Release()
	require.NoError(t, v.Reserve(4))
	for i := 1; i <= 4; i++ {
		_, err := v.PushBack(moveOnly{val: i, lc: lc})
		require.NoError(t, err)
	}
	lc.failMoveAt = lc.moves + 3

	_, err := v.PushBack(moveOnly{val: 5, lc: lc})
	require.ErrorIs(t, err, errMove)
	require.Equal(t, 4, v.Len())
	require.Equal(t, 4, v.Cap())
	// Elements past the failure point were never touched.
	require.Equal(t, 3, v.Get(2).val)
	require.Equal(t, 4, v.Get(3).val)
}

func TestResizeInitFailureRollsBack(t *testing.T) {
	defaults = &lifecycle{failInitAt: 3}
	t.Cleanup(func() { defaults = nil })

	v := New[defaulted]()
	err := v.Resize(5)
	require.ErrorIs(t, err, errInit)
	require.Equal(t, 0, v.Len())
	require.Equal(t, 0, defaults.live)
	require.Equal(t, 2, defaults.destroyed)

	defaults.failInitAt = 0
	require.NoError(t, v.Resize(3))
	for _, d := range v.All() {
		require.Equal(t, 42, d.val)
	}
	require.Equal(t, 3, defaults.live)

	v.Release()
	require.Equal(t, 0, defaults.live)
}

func TestAllocationLimit(t *testing.T) {
	require.NoError(t, Configure(Config{MaxAllocBytes: 8 * datasize.B * 8}))
	t.Cleanup(func() { require.NoError(t, Configure(Config{})) })

	v := New[int64]()
	defer v.Release()
	for i := 0; i < 8; i++ {
		_, err := v.PushBack(int64(i))
		require.NoError(t, err)
	}
	failures := AllocMetrics().Failures

	_, err := v.PushBack(8)
	require.ErrorIs(t, err, ErrAllocation)
	require.Equal(t, 8, v.Len())
	require.Equal(t, 8, v.Cap())
	require.Equal(t, failures+1, AllocMetrics().Failures)

	_, err = v.Insert(0, -1)
	require.ErrorIs(t, err, ErrAllocation)
	require.ErrorIs(t, v.Reserve(9), ErrAllocation)
	require.ErrorIs(t, v.Resize(9), ErrAllocation)
	require.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7}, values(v))
}
