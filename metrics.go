package vector

import (
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Metrics contains statistical information about a vector.
type Metrics struct {
	Len         int     // Live elements
	Cap         int     // Slots in the buffer
	ElemSize    int     // Bytes per slot
	Reserved    int     // Bytes held by the buffer
	Utilization float64 // Ratio of live to total slots (0.0-1.0)
}

// Utilization returns the ratio of live elements to capacity (0.0 to 1.0).
// Returns 0.0 if the vector has no capacity.
func (v *Vector[T]) Utilization() float64 {
	if v.Cap() == 0 {
		return 0
	}
	return float64(v.size) / float64(v.Cap())
}

// Metrics returns a snapshot of vector statistics.
func (v *Vector[T]) Metrics() Metrics {
	var zero T
	return Metrics{
		Len:         v.size,
		Cap:         v.Cap(),
		ElemSize:    int(unsafe.Sizeof(zero)),
		Reserved:    int(v.data.bytes),
		Utilization: v.Utilization(),
	}
}

type allocCounters struct {
	allocations    atomic.Uint64
	deallocations  atomic.Uint64
	failures       atomic.Uint64
	bytesAllocated atomic.Uint64
	bytesInUse     atomic.Int64
}

var stats allocCounters

func (s *allocCounters) allocated(n uint64) {
	s.allocations.Inc()
	s.bytesAllocated.Add(n)
	s.bytesInUse.Add(int64(n))
}

func (s *allocCounters) released(n uint64) {
	s.deallocations.Inc()
	s.bytesInUse.Sub(int64(n))
}

func (s *allocCounters) failed() {
	s.failures.Inc()
}

// AllocStats is a snapshot of the process-wide buffer allocation counters.
type AllocStats struct {
	Allocations    uint64 // Spans allocated
	Deallocations  uint64 // Spans released
	Failures       uint64 // Allocation requests refused
	BytesAllocated uint64 // Bytes allocated over the process lifetime
	BytesInUse     int64  // Bytes held by spans not yet released
}

// AllocMetrics returns a snapshot of the process-wide allocation counters.
func AllocMetrics() AllocStats {
	return AllocStats{
		Allocations:    stats.allocations.Load(),
		Deallocations:  stats.deallocations.Load(),
		Failures:       stats.failures.Load(),
		BytesAllocated: stats.bytesAllocated.Load(),
		BytesInUse:     stats.bytesInUse.Load(),
	}
}

// Collector exports the allocation counters to Prometheus.
type Collector struct {
	allocations    *prometheus.Desc
	deallocations  *prometheus.Desc
	failures       *prometheus.Desc
	bytesAllocated *prometheus.Desc
	bytesInUse     *prometheus.Desc
}

// NewCollector returns a Collector for the process-wide allocation counters.
func NewCollector() *Collector {
	return &Collector{
		allocations: prometheus.NewDesc("vector_buffer_allocations_total",
			"Total number of element buffers allocated.", nil, nil),
		deallocations: prometheus.NewDesc("vector_buffer_deallocations_total",
			"Total number of element buffers released.", nil, nil),
		failures: prometheus.NewDesc("vector_buffer_allocation_failures_total",
			"Total number of element buffer allocations refused.", nil, nil),
		bytesAllocated: prometheus.NewDesc("vector_buffer_allocated_bytes_total",
			"Total bytes of element buffers allocated.", nil, nil),
		bytesInUse: prometheus.NewDesc("vector_buffer_bytes_in_use",
			"Bytes held by element buffers not yet released.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocations
	ch <- c.deallocations
	ch <- c.failures
	ch <- c.bytesAllocated
	ch <- c.bytesInUse
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := AllocMetrics()
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(s.Allocations))
	ch <- prometheus.MustNewConstMetric(c.deallocations, prometheus.CounterValue, float64(s.Deallocations))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.Failures))
	ch <- prometheus.MustNewConstMetric(c.bytesAllocated, prometheus.CounterValue, float64(s.BytesAllocated))
	ch <- prometheus.MustNewConstMetric(c.bytesInUse, prometheus.GaugeValue, float64(s.BytesInUse))
}
