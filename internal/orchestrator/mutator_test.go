package orchestrator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutateProducesDifferentBytesEventually(t *testing.T) {
	seed := make([]byte, 64)
	m := NewMutator(rand.New(rand.NewSource(1)), nil)

	changed := false
	for i := 0; i < 50; i++ {
		out := m.Mutate(seed)
		require.Len(t, out, len(seed))
		for j := range out {
			if out[j] != seed[j] {
				changed = true
			}
		}
	}
	require.True(t, changed)
}

func TestMutateEmptySeedIsNoop(t *testing.T) {
	m := NewMutator(rand.New(rand.NewSource(1)), nil)
	require.Empty(t, m.Mutate(nil))
}

func TestSpliceDictionaryCopiesToken(t *testing.T) {
	m := NewMutator(rand.New(rand.NewSource(2)), [][]byte{[]byte("TOKEN")})
	seed := make([]byte, 32)

	found := false
	for i := 0; i < 200 && !found; i++ {
		out := m.spliceDictionary(append([]byte(nil), seed...))
		for j := 0; j+5 <= len(out); j++ {
			if string(out[j:j+5]) == "TOKEN" {
				found = true
				break
			}
		}
	}
	require.True(t, found)
}

func TestDecodeTokenUnescapesHex(t *testing.T) {
	require.Equal(t, []byte{'A', 0x00, 'B'}, decodeToken(`"A\x00B"`))
}
