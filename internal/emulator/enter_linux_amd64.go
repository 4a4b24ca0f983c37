//go:build linux && amd64

package emulator

/*
#include "sfuzz_enter.h"
*/
import "C"
import (
	"runtime"
	"unsafe"
)

// hostState is the Go-side mirror of struct sfuzz_enter_args; field
// order must match sfuzz_enter.h exactly.
type hostState struct {
	entry           uintptr
	memBase         uintptr
	permBase        uintptr
	regBase         uintptr
	transBase       uintptr
	dirtyBitmapBase uintptr
	dirtyVecBase    uintptr
	coverageBase    uintptr
	exitInfo        uintptr
}

// enterJIT calls into compiled host code at entry with the eight
// reserved-register pointers loaded, following the teacher's
// x86_execute.go pattern of pinning the calling goroutine to its OS
// thread for the duration of a call into raw machine code: the guest's
// notion of "the current thread" must not move underneath it mid-entry.
func enterJIT(state *hostState) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	args := (*C.struct_sfuzz_enter_args)(unsafe.Pointer(state))
	C.sfuzz_enter(args)
}
