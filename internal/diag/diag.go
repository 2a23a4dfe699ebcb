// Package diag implements the fatal-precondition contract shared by the
// bus and cpu packages: a violated invariant terminates the process with
// a diagnostic naming the predicate and the call site that tripped it.
//
// These are programmer/ROM-contract errors (unmapped bus probe, region
// overlap, unimplemented opcode, illegal sub-cycle, decimal-mode opcodes),
// never emulated-program errors. There is nothing to recover from, so the
// caller is expected to die here the same way the original tooling dies
// on bad input via log.Fatalf.
package diag

import (
	"fmt"
	"log"
	"runtime"
)

// Fail reports a violated precondition and terminates the process. The
// message names the failing predicate; Fail fills in the file, line and
// function of its immediate caller.
func Fail(predicate string, args ...interface{}) {
	msg := predicate
	if len(args) > 0 {
		msg = fmt.Sprintf(predicate, args...)
	}
	pc, file, line, ok := runtime.Caller(1)
	fn := "unknown"
	if !ok {
		file, line = "unknown", 0
	} else if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	log.Fatalf("%s:%d: %s: %s", file, line, fn, msg)
}
