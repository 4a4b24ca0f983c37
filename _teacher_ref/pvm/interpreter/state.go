package interpreter

import "github.com/jam-duna/jamduna/pvm/pvmtypes"

const (
	HALT  = pvmtypes.HALT
	PANIC = pvmtypes.PANIC
	FAULT = pvmtypes.FAULT
	HOST  = pvmtypes.HOST
	OOG   = pvmtypes.OOG
)
