package orchestrator

// Statistics mirrors original_source/lib.rs's Statistics struct: the
// aggregate counters the main goroutine accumulates from each worker's
// periodic batch.
type Statistics struct {
	TotalCases uint64
	Crashes    uint64
	UCrashes   uint64
	Coverage   int
	InstrCount uint64
	Timeouts   uint64
}

// Add folds another batch into the running totals.
func (s *Statistics) Add(b Statistics) {
	s.TotalCases += b.TotalCases
	s.Crashes += b.Crashes
	s.UCrashes += b.UCrashes
	s.Coverage += b.Coverage
	s.InstrCount += b.InstrCount
	s.Timeouts += b.Timeouts
}
