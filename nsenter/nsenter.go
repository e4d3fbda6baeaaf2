//go:build linux

// Package nsenter implements the namespace-join launcher (spec §4.4):
// attach the caller, or a forked child of it, to the namespaces of a
// running sandbox identified by pid.
package nsenter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/hako-run/sandbox-run/internal/sandboxerr"
)

// tolerantNamespaces are the namespace link names for which a setns
// failure is warned about and skipped rather than fatal (spec §4.4 step 3,
// §8 recoverable cases).
var tolerantNamespaces = map[string]bool{
	"user": true,
	"net":  true,
}

// Warner receives a diagnostic for a tolerated setns failure. Callers that
// don't care may pass nil.
type Warner func(format string, args ...any)

// Join attaches the calling process to every namespace link under
// /proc/<pid>/ns it can open and join, in the lexicographic name order
// os.ReadDir returns (spec §4.4, §9 "Directory enumeration" note). ENOENT
// on open is always
// tolerated (the running kernel may not expose that namespace); setns
// failure is tolerated only for "user" and "net".
func Join(pid int, warn Warner) error {
	nsDir := filepath.Join("/proc", fmt.Sprint(pid), "ns")

	if err := unix.Chdir(nsDir); err != nil {
		return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not enter namespace directory", nsDir, err)
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not examine sandbox", nsDir, err)
	}

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		name := entry.Name()

		fd, err := unix.Open(name, unix.O_RDONLY, 0)
		if err != nil {
			if err == unix.ENOENT {
				continue
			}

			return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not open namespace link", name, err)
		}

		setnsErr := unix.Setns(fd, 0)
		_ = unix.Close(fd)

		if setnsErr != nil {
			if tolerantNamespaces[name] {
				if warn != nil {
					warn("could not join %s namespace: %v", name, setnsErr)
				}

				continue
			}

			return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not join namespace", name, setnsErr)
		}
	}

	return nil
}

// RunForked is the entry point for the re-exec'd sandbox-enter child used
// when --fork is given: the parent has already joined the target
// namespaces via Join, so this stage only needs to read its RunCtx from
// the inherited pipe fd, set its own parent-death signal, and hand off to
// runctx.Execute (spec §4.4 step 5). It must run on a locked OS thread for
// the same reason sandbox.RunChildStage does.
func RunForked(configFD int) error {
	runtime.LockOSThread()

	pipeFile := os.NewFile(uintptr(configFD), "run-ctx-pipe")
	defer pipeFile.Close()

	rc, err := decodeRunCtx(pipeFile)
	if err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not read run context", err)
	}

	if err := unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0); err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not set parent death signal", err)
	}

	return rc.Execute()
}
