//go:build linux

package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/hako-run/sandbox-run/internal/sandboxerr"
)

// fdFile wraps an inherited raw file descriptor as an *os.File for use with
// the encoding/json reader in wire.go.
func fdFile(fd int, name string) *os.File {
	return os.NewFile(uintptr(fd), name)
}

// ConfigFD is the fd number the config pipe's read end is inherited on:
// exec.Cmd's ExtraFiles[0] always lands on fd 3 (stdin/stdout/stderr take
// 0-2).
const ConfigFD = 3

// buildAndExec performs the ordered steps of spec §4.2 inside a freshly
// cloned child that owns new mount/pid/ipc/uts/net namespaces, then hands
// off to runctx.Execute. It returns only on failure.
//
// It must run on a single, unshared OS thread for its entire duration: Go's
// runtime is free to move a goroutine between OS threads between syscalls,
// which would be fatal here because mount/pivot_root/chdir establish
// thread-local-looking process state that later steps depend on running in
// the same thread context pivot_root left them in. RunChildStage locks the
// calling goroutine to its OS thread before calling this function and never
// unlocks it — the process either execve's away or exits.
func buildAndExec(cfg SandboxConfig) error {
	if err := unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0); err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not set parent death signal", err)
	}

	if err := unix.Mount("none", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not make root mount private", err)
	}

	if err := unix.Mount(cfg.SandboxDir, cfg.SandboxDir, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not turn sandbox into a mountpoint", cfg.SandboxDir, err)
	}

	if cfg.ReadOnly {
		if err := remountReadOnly(cfg.SandboxDir); err != nil {
			return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not make sandbox read-only", cfg.SandboxDir, err)
		}
	}

	oldRootPath := filepath.Join(cfg.SandboxDir, hakoDir)

	if err := unix.PivotRoot(cfg.SandboxDir, oldRootPath); err != nil {
		return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not pivot root", cfg.SandboxDir, err)
	}

	if err := unix.Chdir("/"); err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not chdir into new root", err)
	}

	for _, m := range cfg.Mounts {
		// The old root is still reachable at /.hako, so the bind source is
		// formed through it rather than through the (now invalid) pre-pivot
		// path.
		source := filepath.Join("/", hakoDir, m.HostPath)

		if err := unix.Mount(source, m.SandboxPath, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
			return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed,
				fmt.Sprintf("could not mount %s to %s", m.HostPath, m.SandboxPath), m.SandboxPath, err)
		}

		if m.ReadOnly {
			if err := remountReadOnly(m.SandboxPath); err != nil {
				return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed,
					fmt.Sprintf("could not make %s read-only", m.SandboxPath), m.SandboxPath, err)
			}
		}
	}

	if err := unix.Unmount("/"+hakoDir, unix.MNT_DETACH); err != nil {
		return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "could not unmount old root", "/"+hakoDir, err)
	}

	// Always lock privileges when any identity change was requested (spec
	// §9, Open Question resolution); otherwise leave it user-controlled.
	rc := cfg.RunCtx
	if rc.UID != nil || rc.GID != nil {
		rc.LockPrivs = true
	}

	return rc.Execute()
}

// remountReadOnly performs the second step of the MS_BIND then
// MS_REMOUNT|MS_BIND|MS_RDONLY dance on a path the caller has already
// bind-mounted: MS_RDONLY cannot be set in the initial MS_BIND call (spec
// §4.2 step 8).
func remountReadOnly(path string) error {
	return unix.Mount("none", path, "", unix.MS_REMOUNT|unix.MS_BIND|unix.MS_RDONLY, "")
}

// RunChildStage is the entry point for the re-exec'd sandbox-run child
// (SPEC_FULL.md §2). It reads the SandboxConfig from the inherited pipe fd
// configFD (callers pass ConfigFD), locks the calling goroutine to its OS
// thread (see buildAndExec's doc comment), and runs the construction
// sequence. It returns only on failure.
func RunChildStage(configFD int) error {
	runtime.LockOSThread()

	pipeFile := fdFile(configFD, "sandbox-config-pipe")
	defer pipeFile.Close()

	cfg, err := decodeConfig(pipeFile)
	if err != nil {
		return sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not read sandbox config", err)
	}

	return buildAndExec(cfg)
}
