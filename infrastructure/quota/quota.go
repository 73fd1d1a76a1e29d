package quota

import "sync"

// Fixed per-call costs of the YouTube Data API operations this service
// issues. Statistics lookups cost one unit per request regardless of how
// many ids the batch carries.
const (
	CostChannelList    int64 = 1
	CostPlaylistList   int64 = 1
	CostStatisticsList int64 = 1
)

// Accountant tracks the cumulative upstream cost of one logical operation.
// A fresh Accountant is created at the entry of every top-level request so
// concurrent operations never share a running total. Statistics batches
// charge it from multiple goroutines, hence the mutex.
type Accountant struct {
	mu    sync.Mutex
	total int64
	byOp  map[string]int64
}

// NewAccountant creates an accountant with a zero running total.
func NewAccountant() *Accountant {
	return &Accountant{byOp: make(map[string]int64)}
}

// Charge records cost against the running total. It never fails; the
// enforcement ceiling is an operational concern, not this accountant's.
func (a *Accountant) Charge(cost int64, operation string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total += cost
	a.byOp[operation] += cost
}

// Total returns the accumulated cost. Only meaningful once every operation
// that charges this accountant has completed.
func (a *Accountant) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// ByOperation returns a copy of the per-operation cost breakdown.
func (a *Accountant) ByOperation() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int64, len(a.byOp))
	for op, c := range a.byOp {
		out[op] = c
	}
	return out
}
