// Package vector implements a contiguous, resizable sequence container for Go.
//
// # Overview
//
// Vector[T] behaves like a dynamic array: random access, amortized O(1)
// append, insertion and removal anywhere in the sequence. Unlike a plain
// slice it sits on an explicitly owned raw buffer (RawMemory[T]) and tracks
// which slots hold live elements, which gives it:
//
//   - Element lifetime hooks (construction, copy, move, destruction)
//   - All-or-nothing growth when an element copy or move fails
//   - Allocation failures reported as errors instead of crashes
//   - Per-process allocation limits and metrics
//
// # Basic Usage
//
//	v := vector.New[int]()
//	defer v.Release()
//
//	v.PushBack(1)
//	v.PushBack(2)
//	v.Insert(0, 0)   // [0 1 2]
//	v.Erase(1)       // [0 2]
//
//	for i, x := range v.All() {
//		fmt.Println(i, x)
//	}
//
// # Element Lifetimes
//
// Element types opt into lifetime hooks by implementing Initializer,
// Copier, Mover, SafeMover or Destroyer on their pointer type. Types that
// implement none of them are zero-constructed, copied and moved bitwise.
//
// When the buffer grows, live elements are moved if the move cannot fail
// and copied if it can, so a failed transfer leaves the vector unchanged.
// Types that only have a fallible move lose that guarantee; see
// StrongGrowthGuarantee.
//
// Shifting elements inside the buffer (Insert, Erase) only guarantees that
// every slot stays live and the size stays correct if a move fails.
//
// # Thread Safety
//
// A Vector is not safe for concurrent use. The global allocation config and
// counters are.
//
// # Contract Violations
//
// Out-of-range indexes, PopBack on an empty vector and invalid insert
// positions panic, as they would on a slice. Building with the vectordebug
// tag additionally checks every slot transition:
//
//	go test -tags vectordebug ./...
//
// # Configuration and Metrics
//
//	var cfg vector.Config
//	cfg.RegisterFlags(flag.CommandLine)
//	flag.Parse()
//	if err := vector.Configure(cfg); err != nil { ... }
//
//	prometheus.MustRegister(vector.NewCollector())
package vector
