package elf

import (
	"debug/elf"
	"testing"

	"github.com/seal9055/sfuzz/internal/mmu"
	"github.com/stretchr/testify/require"
)

func encodeJALR(rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | 0<<12 | rd<<7 | 0x67
}

func encodeADDI(rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | 0<<12 | rd<<7 | 0x13
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestScanToReturnStopsAtRet(t *testing.T) {
	mem, err := mmu.New(1 << 16)
	require.NoError(t, err)
	defer mem.Close()
	require.NoError(t, mem.SetPermissions(0, 0x20, mmu.PermRead|mmu.PermExec))

	// addi x1,x0,1 ; addi x2,x0,2 ; jalr x0,0(x1)  -- "ret" shape
	require.NoError(t, mem.LoadBytes(0, le32(encodeADDI(1, 0, 1))))
	require.NoError(t, mem.LoadBytes(4, le32(encodeADDI(2, 0, 2))))
	require.NoError(t, mem.LoadBytes(8, le32(encodeJALR(0, 1, 0))))

	size := scanToReturn(mem, 0, 0x20)
	require.EqualValues(t, 12, size)
}

func TestDeriveFunctionRangesUsesSymbolSizeWhenPresent(t *testing.T) {
	mem, err := mmu.New(1 << 16)
	require.NoError(t, err)
	defer mem.Close()

	symbols := []Symbol{
		{Name: "f", Addr: 0x1000, Size: 0x40},
		{Name: "g", Addr: 0x2000, Size: 0}, // falls back to scanning
	}
	require.NoError(t, mem.SetPermissions(0x2000, 0x20, mmu.PermRead|mmu.PermExec))
	require.NoError(t, mem.LoadBytes(0x2000, le32(encodeJALR(0, 1, 0))))

	ranges := deriveFunctionRanges(mem, symbols, &elf.File{})
	require.Len(t, ranges, 2)
	require.Equal(t, FuncRange{Entry: 0x1000, Size: 0x40}, ranges[0])
	require.Equal(t, uint64(0x2000), ranges[1].Entry)
	require.EqualValues(t, 4, ranges[1].Size)
}

func TestImageRangeContaining(t *testing.T) {
	img := &Image{ranges: []FuncRange{
		{Entry: 0x1000, Size: 0x40},
		{Entry: 0x2000, Size: 0x10},
	}}

	r, ok := img.RangeContaining(0x1010)
	require.True(t, ok)
	require.Equal(t, uint64(0x1000), r.Entry)

	_, ok = img.RangeContaining(0x1800)
	require.False(t, ok)

	r, ok = img.RangeContaining(0x2005)
	require.True(t, ok)
	require.Equal(t, uint64(0x2000), r.Entry)
}

func TestProgPerm(t *testing.T) {
	require.Equal(t, mmu.PermRead|mmu.PermExec, progPerm(elf.PF_R|elf.PF_X))
	require.Equal(t, mmu.PermRead|mmu.PermWrite, progPerm(elf.PF_R|elf.PF_W))
}
