package interpreter

import "github.com/jam-duna/jamduna/pvm/pvmtypes"

const (
	OK   = pvmtypes.OK
	NONE = pvmtypes.NONE
	WHAT = pvmtypes.WHAT
	OOB  = pvmtypes.OOB
	WHO  = pvmtypes.WHO
	FULL = pvmtypes.FULL
	CORE = pvmtypes.CORE
	CASH = pvmtypes.CASH
	LOW  = pvmtypes.LOW
	HUH  = pvmtypes.HUH
)
