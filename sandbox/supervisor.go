//go:build linux

package sandbox

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/hako-run/sandbox-run/internal/exitcode"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/runctx"
)

// ChildSentinelArg is the hidden argv[1] the supervisor passes to its
// re-exec'd child so that cmd/sandbox-run's main() recognizes it is the
// sandbox construction stage rather than a fresh top-level invocation (see
// SPEC_FULL.md §2, "Process re-exec model").
const ChildSentinelArg = "__sandbox_child"

// cloneFlags are the namespaces the sandboxed child owns.
const cloneFlags = unix.CLONE_NEWPID | unix.CLONE_NEWIPC | unix.CLONE_NEWNS |
	unix.CLONE_NEWUTS | unix.CLONE_NEWNET

// terminatingSignals are converted into an explicit kill of the child plus
// a 128+signal exit, mirroring the sigwait loop of the original source.
var terminatingSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// Supervise runs cfg end to end: it spawns a re-exec'd child that performs
// the sandbox construction sequence (sandbox/child.go), writes pidFile if
// non-empty, then blocks forwarding terminating signals and reaping the
// child until it exits, returning the exit code spec.md §6.3 describes.
//
// signals, if non-nil, is used instead of installing a new signal.Notify
// channel - cmd/sandbox-run's main registers its own channel before Run and
// passes it here.
func Supervise(cfg SandboxConfig, pidFile string, signals chan os.Signal) (int, error) {
	if cfg.SandboxDir == "" {
		return 1, sandboxerr.New(sandboxerr.InvalidArgument, "must provide sandbox dir", nil)
	}

	self, err := os.Executable()
	if err != nil {
		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not resolve own executable", err)
	}

	pipeRead, pipeWrite, err := os.Pipe()
	if err != nil {
		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not create config pipe", err)
	}
	defer pipeRead.Close()

	cmd := exec.Command(self, ChildSentinelArg)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{pipeRead}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: cloneFlags,
		Pdeathsig:  syscall.SIGKILL,
	}

	if err := cmd.Start(); err != nil {
		pipeWrite.Close()

		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not start sandbox child", err)
	}

	encodeErr := encodeConfig(pipeWrite, cfg)
	pipeWrite.Close()

	if encodeErr != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()

		return 1, sandboxerr.New(sandboxerr.SandboxSetupFailed, "could not send sandbox config", encodeErr)
	}

	// The supervisor never needs more privilege than it takes to write the
	// pid file; it sheds its own identity immediately after the child is
	// under way.
	if err := runctx.DropIdentity(cfg.RunCtx.UID, cfg.RunCtx.GID); err != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()

		return 1, err
	}

	if pidFile != "" {
		if err := writePidFile(pidFile, cmd.Process.Pid); err != nil {
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()

			return 1, err
		}
	}

	if signals == nil {
		signals = make(chan os.Signal, 1)
		signal.Notify(signals, append(append([]os.Signal{}, terminatingSignals...), syscall.SIGCHLD)...)
		defer signal.Stop(signals)
	}

	return waitLoop(cmd, signals)
}

func writePidFile(path string, pid int) error {
	f, err := os.Create(path)
	if err != nil {
		return sandboxerr.NewPath(sandboxerr.SupervisorIoFailed, "could not open pid file for writing", path, err)
	}

	_, writeErr := fmt.Fprintf(f, "%d", pid)
	closeErr := f.Close()

	if writeErr != nil {
		return sandboxerr.NewPath(sandboxerr.SupervisorIoFailed, "could not write pid file", path, writeErr)
	}

	if closeErr != nil {
		return sandboxerr.NewPath(sandboxerr.SupervisorIoFailed, "could not close pid file", path, closeErr)
	}

	return nil
}

// waitLoop blocks forwarding terminating signals to the child and reaping
// SIGCHLD until the child has exited, returning the exit code described by
// spec.md §6.3 / §8.
func waitLoop(cmd *exec.Cmd, signals chan os.Signal) (int, error) {
	for sig := range signals {
		if sig == syscall.SIGCHLD {
			code, reaped, err := reapChild(cmd.Process.Pid)
			if err != nil {
				return 1, sandboxerr.New(sandboxerr.SupervisorIoFailed, "could not reap child", err)
			}

			if reaped {
				return code, nil
			}

			continue
		}

		termSig, _ := sig.(syscall.Signal)
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()

		return exitcode.FromSignal(termSig), nil
	}

	return 1, sandboxerr.New(sandboxerr.SupervisorIoFailed, "signal channel closed unexpectedly", nil)
}

// reapChild performs a single non-blocking waitpid. reaped is false when
// the child has not yet exited.
func reapChild(pid int) (code int, reaped bool, err error) {
	var status unix.WaitStatus

	got, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
	if err != nil {
		return 0, false, err
	}

	if got != pid {
		return 0, false, nil
	}

	if status.Exited() {
		return status.ExitStatus(), true, nil
	}

	if status.Signaled() {
		return exitcode.FromSignal(status.Signal()), true, nil
	}

	return 0, false, nil
}
