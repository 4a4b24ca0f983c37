package orchestrator

import "math/rand"

// interestingBytes are the classic AFL-style boundary values a byte
// splice mutation prefers over a uniformly random one, since off-by-one
// and sign-extension bugs cluster around them.
var interestingBytes = []byte{
	0x00, 0x01, 0x7f, 0x80, 0xff, 0x10, 0x20, 0x40,
}

// Mutator generalizes original_source/src/mutator.rs's single-strategy
// byte overwrite into the handful of classic greybox mutation
// strategies SPEC_FULL.md §3.1 calls for: bit flip, byte flip,
// arithmetic increment/decrement, interesting-value splice, and
// dictionary-token splice. Each call to Mutate picks a random strategy
// per round rather than always overwriting, which is the one place
// this diverges from the original's always-overwrite behavior.
type Mutator struct {
	rng  *rand.Rand
	dict [][]byte
}

// NewMutator returns a Mutator seeded from rng, with an optional
// dictionary of tokens available to the splice strategy.
func NewMutator(rng *rand.Rand, dict [][]byte) *Mutator {
	return &Mutator{rng: rng, dict: dict}
}

// Mutate returns a mutated copy of seed, applying between 1 and 8
// rounds of a randomly chosen strategy (lib.rs's rng.gen_range(0..8)
// round count, carried over unchanged).
func (m *Mutator) Mutate(seed []byte) []byte {
	out := append([]byte(nil), seed...)
	if len(out) == 0 {
		return out
	}

	rounds := m.rng.Intn(8) + 1
	for i := 0; i < rounds; i++ {
		switch m.rng.Intn(5) {
		case 0:
			m.bitFlip(out)
		case 1:
			m.byteFlip(out)
		case 2:
			m.arith(out)
		case 3:
			m.spliceInteresting(out)
		case 4:
			out = m.spliceDictionary(out)
		}
	}
	return out
}

func (m *Mutator) bitFlip(b []byte) {
	off := m.rng.Intn(len(b))
	b[off] ^= 1 << uint(m.rng.Intn(8))
}

func (m *Mutator) byteFlip(b []byte) {
	off := m.rng.Intn(len(b))
	b[off] = byte(m.rng.Intn(256))
}

func (m *Mutator) arith(b []byte) {
	off := m.rng.Intn(len(b))
	delta := byte(m.rng.Intn(35) + 1) // 1..35, AFL's ARITH_MAX
	if m.rng.Intn(2) == 0 {
		b[off] += delta
	} else {
		b[off] -= delta
	}
}

func (m *Mutator) spliceInteresting(b []byte) {
	off := m.rng.Intn(len(b))
	b[off] = interestingBytes[m.rng.Intn(len(interestingBytes))]
}

// spliceDictionary overwrites a run starting at a random offset with a
// random dictionary token, growing out if the token doesn't fit
// entirely before the end of the input. With an empty dictionary this
// is a no-op, matching "no -d flag supplied" gracefully.
func (m *Mutator) spliceDictionary(b []byte) []byte {
	if len(m.dict) == 0 {
		return b
	}
	tok := m.dict[m.rng.Intn(len(m.dict))]
	off := m.rng.Intn(len(b))
	end := off + len(tok)
	if end > len(b) {
		b = append(b, make([]byte, end-len(b))...)
	}
	copy(b[off:end], tok)
	return b
}
