//go:build linux

// Package runctx implements the sandbox-occupant launcher shared by
// sandbox-run and sandbox-enter: given a fully populated [RunCtx], it
// transitions the current process into its final identity and replaces its
// image with [syscall.Exec]. See spec §4.1.
package runctx

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/hako-run/sandbox-run/internal/sandboxerr"
)

// RunCtx bundles the uid/gid/cwd/env/command/flags describing how the final
// in-sandbox process is launched (spec §3).
type RunCtx struct {
	// UID, if non-nil, is the numeric user id to switch to before exec.
	UID *int
	// GID, if non-nil, is the numeric group id to switch to before exec.
	GID *int
	// WorkDir, if non-empty, is an absolute path inside the sandbox to
	// chdir into before exec.
	WorkDir string
	// Env is the complete environment for the new process. There is no
	// host-environment inheritance: Env as given is the final environ.
	Env []string
	// Command is the argv for the final process; Command[0] is also the
	// executable path passed to execve.
	Command []string
	// LockPrivs requests PR_SET_NO_NEW_PRIVS before exec.
	LockPrivs bool
}

// Execute runs the ordered steps of spec §4.1. It returns only on failure;
// on success it ends in syscall.Exec and never returns.
func (rc RunCtx) Execute() error {
	if err := DropIdentity(rc.UID, rc.GID); err != nil {
		return err
	}

	if rc.LockPrivs {
		// Must happen before exec: it only takes effect on subsequent execs.
		if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
			return sandboxerr.New(sandboxerr.PrivilegeChangeFailed, "cannot lock privileges", err)
		}
	}

	if rc.WorkDir != "" {
		if err := unix.Chdir(rc.WorkDir); err != nil {
			return sandboxerr.NewPath(sandboxerr.SandboxSetupFailed, "chdir failed", rc.WorkDir, err)
		}
	}

	if len(rc.Command) == 0 {
		return sandboxerr.New(sandboxerr.InvalidArgument, "exec failed", fmt.Errorf("empty command"))
	}

	err := syscall.Exec(rc.Command[0], rc.Command, rc.Env)

	// syscall.Exec only returns on failure.
	return sandboxerr.NewPath(sandboxerr.ExecFailed, "exec failed", rc.Command[0], err)
}

// DropIdentity clears supplementary groups and switches to gid then uid, in
// that strict order (setgid must run while the process still holds the
// privilege setuid would drop). Either argument may be nil to leave that ID
// unchanged. It is shared by RunCtx.Execute and the sandbox-run supervisor,
// which drops its own privileges separately from the child (spec §4.3).
func DropIdentity(uid, gid *int) error {
	if uid != nil || gid != nil {
		if err := unix.Setgroups(nil); err != nil {
			return sandboxerr.New(sandboxerr.PrivilegeChangeFailed, "cannot drop supplementary groups", err)
		}
	}

	if gid != nil {
		if err := unix.Setresgid(*gid, *gid, *gid); err != nil {
			return sandboxerr.New(sandboxerr.PrivilegeChangeFailed, "cannot set gid", err)
		}
	}

	if uid != nil {
		if err := unix.Setresuid(*uid, *uid, *uid); err != nil {
			return sandboxerr.New(sandboxerr.PrivilegeChangeFailed, "cannot set uid", err)
		}
	}

	return nil
}
