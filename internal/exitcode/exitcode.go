// Package exitcode computes process exit codes from termination signals,
// shared by the sandbox-run supervisor and sandbox-enter's --fork wait loop
// so the two binaries agree on the 128+N convention.
package exitcode

import "syscall"

// FromSignal implements the 128+N convention: a process terminated by
// signal N reports exit status 128+N.
func FromSignal(sig syscall.Signal) int {
	return 128 + int(sig)
}
