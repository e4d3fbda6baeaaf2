//go:build linux

package nsenter

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/hako-run/sandbox-run/internal/exitcode"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/runctx"
)

// ForkSentinelArg is the hidden argv[1] passed to the re-exec'd --fork
// child so cmd/sandbox-enter's main() recognizes this invocation as the
// forked stage; see RunForked and SPEC_FULL.md §2.
const ForkSentinelArg = "__enter_child"

// ConfigFD is the fd number the run-ctx pipe's read end is inherited on,
// the same convention sandbox.ConfigFD uses.
const ConfigFD = 3

// RunWithFork implements spec §4.4 step 5's --fork branch: the caller has
// already joined the target namespaces via Join. Forking is required
// whenever those namespaces include a pid namespace, since setns(pid_ns)
// only takes effect for children of the caller created afterward. The
// fork itself is a re-exec of the running binary (Go forbids a bare
// fork(2) outside of exec); the re-exec'd child inherits the
// already-joined namespaces and calls RunForked.
func RunWithFork(rc runctx.RunCtx) (int, error) {
	self, err := os.Executable()
	if err != nil {
		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not resolve own executable", err)
	}

	pipeRead, pipeWrite, err := os.Pipe()
	if err != nil {
		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not create run-ctx pipe", err)
	}
	defer pipeRead.Close()

	cmd := exec.Command(self, ForkSentinelArg)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{pipeRead}

	if err := cmd.Start(); err != nil {
		pipeWrite.Close()

		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not start forked child", err)
	}

	encodeErr := encodeRunCtx(pipeWrite, rc)
	pipeWrite.Close()

	if encodeErr != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()

		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not send run context", encodeErr)
	}

	// The parent drops privileges but does not exec (spec §4.4 step 5).
	if err := runctx.DropIdentity(rc.UID, rc.GID); err != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()

		return 1, err
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		return 0, nil
	}

	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return 1, sandboxerr.New(sandboxerr.SupervisorIoFailed, "could not wait for forked child", waitErr)
	}

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return exitErr.ExitCode(), nil
	}

	if status.Signaled() {
		return exitcode.FromSignal(status.Signal()), nil
	}

	return status.ExitStatus(), nil
}
