package service

import "sync"

// OperationGuard enforces at-most-one in-flight transition per vacuum id
// within this process. Acquisition is a single atomic test-and-set
// (sync.Map.LoadOrStore); a separate check-then-set would race.
//
// The guard only covers this process's own workers. Writers outside the
// process are caught by the repository's version check instead.
type OperationGuard struct {
	inFlight sync.Map // vacuum id → struct{}
}

func NewOperationGuard() *OperationGuard {
	return &OperationGuard{}
}

// TryAcquire marks the vacuum as having a transition in flight. It reports
// false when another operation already holds the flag.
func (g *OperationGuard) TryAcquire(vacuumID int64) bool {
	_, loaded := g.inFlight.LoadOrStore(vacuumID, struct{}{})
	return !loaded
}

// Release clears the flag unconditionally. Safe to call for ids that were
// never acquired; the default state is "free".
func (g *OperationGuard) Release(vacuumID int64) {
	g.inFlight.Delete(vacuumID)
}

// Held reports whether a transition is currently in flight for the vacuum.
func (g *OperationGuard) Held(vacuumID int64) bool {
	_, ok := g.inFlight.Load(vacuumID)
	return ok
}
