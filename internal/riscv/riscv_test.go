package riscv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	imm12 := (u >> 12) & 1
	imm11 := (u >> 11) & 1
	imm10_5 := (u >> 5) & 0x3f
	imm4_1 := (u >> 1) & 0xf
	return imm12<<31 | imm10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | imm4_1<<8 | imm11<<7 | opcode
}

func TestDecodeADDI(t *testing.T) {
	// addi x5, x6, -1
	raw := encodeI(0x13, 5, 0, 6, -1)
	inst, err := Decode(raw, 0x1000)
	require.NoError(t, err)
	require.Equal(t, OpADDI, inst.Op)
	require.EqualValues(t, 5, inst.Rd)
	require.EqualValues(t, 6, inst.Rs1)
	require.EqualValues(t, -1, inst.Imm)
}

func TestDecodeADD(t *testing.T) {
	// add x1, x2, x3
	raw := encodeR(0x33, 1, 0, 2, 3, 0)
	inst, err := Decode(raw, 0)
	require.NoError(t, err)
	require.Equal(t, OpADD, inst.Op)
}

func TestDecodeSUB(t *testing.T) {
	raw := encodeR(0x33, 1, 0, 2, 3, 0x20)
	inst, err := Decode(raw, 0)
	require.NoError(t, err)
	require.Equal(t, OpSUB, inst.Op)
}

func TestDecodeBEQNegativeOffset(t *testing.T) {
	raw := encodeB(0x63, 0, 1, 2, -4)
	inst, err := Decode(raw, 0x2000)
	require.NoError(t, err)
	require.Equal(t, OpBEQ, inst.Op)
	require.EqualValues(t, -4, inst.Imm)
	require.True(t, inst.IsBranch)
}

func TestDecodeJALIsCallWhenRdIsRA(t *testing.T) {
	// jal ra, +16 : imm encoded directly in J-type bit positions
	raw := uint32(0x6F) | (1 << 7) // rd = x1 (ra), opcode=JAL, imm bits all zero except our manual set below
	// set imm=16 -> bit 4 of the 21-bit immediate (bits 20,19:12,11,10:1)
	// imm[10:1] maps to raw bits 21..30; 16 = 0b10000 -> imm[4]=1 -> bit21+3=24
	raw |= 1 << 24
	inst, err := Decode(raw, 0x3000)
	require.NoError(t, err)
	require.Equal(t, OpJAL, inst.Op)
	require.True(t, inst.IsJump)
	require.True(t, inst.IsCall)
	require.EqualValues(t, 16, inst.Imm)
}

func TestDecodeJALRIsReturnWhenRdZeroRs1RA(t *testing.T) {
	raw := encodeI(0x67, 0, 0, 1, 0)
	inst, err := Decode(raw, 0)
	require.NoError(t, err)
	require.Equal(t, OpJALR, inst.Op)
	require.True(t, inst.IsReturn)
}

func TestDecodeECALL(t *testing.T) {
	inst, err := Decode(0x00000073, 0)
	require.NoError(t, err)
	require.Equal(t, OpECALL, inst.Op)
	require.True(t, inst.IsControlFlow())
}

func TestDecodeRejectsCompressed(t *testing.T) {
	_, err := Decode(0x4505, 0) // low bits 01 -> 16-bit C extension encoding
	require.Error(t, err)
	var ue *ErrUnsupported
	require.ErrorAs(t, err, &ue)
}

func TestDecodeRejectsMExtension(t *testing.T) {
	// mul x1, x2, x3 : funct7 = 0x01
	raw := encodeR(0x33, 1, 0, 2, 3, 0x01)
	_, err := Decode(raw, 0)
	require.Error(t, err)
}

func TestDecodeRejectsAtomic(t *testing.T) {
	// AMO opcode 0x2F is outside RV64I
	raw := uint32(0x2F)
	_, err := Decode(raw, 0)
	require.Error(t, err)
}

func TestDecodeLoadStoreVariants(t *testing.T) {
	cases := []struct {
		funct3 uint32
		op     Op
	}{
		{0, OpLB}, {1, OpLH}, {2, OpLW}, {3, OpLD}, {4, OpLBU}, {5, OpLHU}, {6, OpLWU},
	}
	for _, c := range cases {
		raw := encodeI(0x03, 1, c.funct3, 2, 0)
		inst, err := Decode(raw, 0)
		require.NoError(t, err)
		require.Equal(t, c.op, inst.Op)
	}
}
