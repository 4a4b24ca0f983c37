// Package orchestrator implements the seed corpus, energy schedule,
// mutator, and worker loop spec.md scopes out of the core (§1 "no
// mutation engine, no scheduling policy, no statistics reporting") but
// which a complete fuzzer still needs somewhere. Every contract named
// here is grounded on original_source/src/lib.rs's Input/Corpus/worker
// and src/mutator.rs's Mutator, restored per SPEC_FULL.md §3.1.
package orchestrator

import (
	"sync"
)

// Input is one corpus entry: its bytes, the energy-schedule counters
// original_source/lib.rs tracks per seed, and the instruction count
// measured either at calibration time or the first time a mutation of
// it found new coverage.
type Input struct {
	Data []byte

	HasExecTime bool
	ExecTime    uint64

	CovFinds uint64 // this seed (or a mutation of it) found new coverage this many times
	Crashes  uint64 // mutations of this seed crashed this many times
	UCrashes uint64 // ...and this many of those crashes were new/unique
}

// NewInput wraps data as a freshly discovered corpus entry with no
// calibration measurement yet.
func NewInput(data []byte) Input {
	return Input{Data: append([]byte(nil), data...)}
}

// Corpus is the orchestrator's shared, cross-worker seed pool (lib.rs's
// Corpus): protected by a single mutex rather than lib.rs's separate
// RwLock-per-field split, since Go's sync.RWMutex around the whole
// slice is simpler and every access here is short.
type Corpus struct {
	mu     sync.RWMutex
	inputs []Input

	totalSize     uint64
	totalExecTime uint64
}

// NewCorpus returns an empty corpus; seeds are added with Add.
func NewCorpus() *Corpus {
	return &Corpus{}
}

// Add appends a new seed and folds its size (and, if calibrated,
// execution time) into the running totals calculateEnergy normalizes
// against.
func (c *Corpus) Add(in Input) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = append(c.inputs, in)
	c.totalSize += uint64(len(in.Data))
	if in.HasExecTime {
		c.totalExecTime += in.ExecTime
	}
}

// Len reports the current seed count.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.inputs)
}

// At returns a copy of the seed at idx, so callers can mutate their own
// copy of Data without taking the corpus lock for the whole fuzz case.
func (c *Corpus) At(idx int) Input {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in := c.inputs[idx]
	return Input{
		Data:        append([]byte(nil), in.Data...),
		HasExecTime: in.HasExecTime,
		ExecTime:    in.ExecTime,
		CovFinds:    in.CovFinds,
		Crashes:     in.Crashes,
		UCrashes:    in.UCrashes,
	}
}

// SetExecTime records idx's calibration measurement and folds it into
// totalExecTime (lib.rs's calibrate_seeds writing inputs[i].exec_time).
func (c *Corpus) SetExecTime(idx int, instrs uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs[idx].HasExecTime = true
	c.inputs[idx].ExecTime = instrs
	c.totalExecTime += instrs
}

// RecordOutcome updates idx's counters after one energy-budget case and,
// if the case found new coverage, enqueues the mutated input that found
// it as a fresh seed (lib.rs worker's "if case_res.1 > 0" branch).
func (c *Corpus) RecordOutcome(idx int, crashed, uniqueCrash bool, newEdges int, mutated []byte, instrs uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if crashed {
		c.inputs[idx].Crashes++
	}
	if uniqueCrash {
		c.inputs[idx].UCrashes++
	}
	if newEdges > 0 {
		c.inputs[idx].CovFinds++
		c.inputs = append(c.inputs, Input{
			Data:        append([]byte(nil), mutated...),
			HasExecTime: true,
			ExecTime:    instrs,
		})
		c.totalSize += uint64(len(mutated))
		c.totalExecTime += instrs
	}
}

// calculateEnergy reproduces lib.rs Input::calculate_energy: a base of
// 80000, nudged by how this seed's size and exec time deviate from the
// corpus-wide average, boosted for every coverage find and unique
// crash it has produced, reduced by its total crash count, clamped to
// [20000, 150000].
func (c *Corpus) calculateEnergy(idx int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.inputs)
	in := c.inputs[idx]
	avgSize := float64(c.totalSize) / float64(n)
	avgExec := float64(c.totalExecTime) / float64(n)

	energy := 80000.0

	sizeDiff := float64(len(in.Data)) - avgSize
	if avgSize != 0 {
		energy += (sizeDiff / avgSize) * 100000.0
	}

	if avgExec != 0 {
		execDiff := float64(in.ExecTime) - avgExec
		energy += (execDiff / avgExec) * 100000.0
	}

	for i := uint64(0); i < in.CovFinds; i++ {
		energy += energy / 10
	}
	for i := uint64(0); i < in.UCrashes; i++ {
		energy += energy / 10
	}

	energy -= float64(in.Crashes)

	const (
		minEnergy = 20000.0
		maxEnergy = 150000.0
	)
	if energy < minEnergy {
		energy = minEnergy
	}
	if energy > maxEnergy {
		energy = maxEnergy
	}
	return int(energy)
}

// Energy returns idx's current schedule weight, exported so Worker can
// call it without reaching into Corpus internals.
func (c *Corpus) Energy(idx int) int { return c.calculateEnergy(idx) }
