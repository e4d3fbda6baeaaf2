package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/hako-run/sandbox-run/internal/debuglog"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/sandbox"
)

// Run is the entry point used by both main() and the test suite: it keeps
// all process-global state (stdio, argv, the signal channel) as
// parameters so CLI parsing and validation can be exercised without
// touching a real terminal or namespace machinery. Returns the process
// exit code.
func Run(stdin io.Reader, stdout, stderr io.Writer, args []string, sigCh chan os.Signal) int {
	if len(args) > 1 && args[1] == sandbox.ChildSentinelArg {
		return runChildStage()
	}

	if runtime.GOOS != "linux" {
		fprintError(stderr, errors.New("sandbox-run requires Linux"))

		return 1
	}

	opts, err := parseOptions(args[1:])
	if err != nil {
		fprintError(stderr, err)
		printUsage(stderr)

		return 1
	}

	if opts.help {
		printUsage(stdout)

		return 0
	}

	var debug *debuglog.Logger
	if opts.debug {
		debug = debuglog.New(stderr)
	}

	logStartupPlan(debug, opts)

	code, err := sandbox.Supervise(opts.cfg, opts.pidFile, sigCh)
	if err != nil {
		fprintError(stderr, err)

		return 1
	}

	return code
}

// logStartupPlan prints the resolved mount plan and privilege decisions
// before the child is cloned, mirroring the teacher's debug-before-action
// ordering.
func logStartupPlan(debug *debuglog.Logger, opts options) {
	if !debug.Enabled() {
		return
	}

	debug.Section("Sandbox Plan")
	debug.Bulletf("target: %s", opts.cfg.SandboxDir)
	debug.Bulletf("read-only root: %t", opts.cfg.ReadOnly)

	for _, m := range opts.cfg.Mounts {
		debug.Bulletf("mount %s -> %s (ro=%t)", m.HostPath, m.SandboxPath, m.ReadOnly)
	}

	if opts.cfg.RunCtx.UID != nil {
		debug.Bulletf("uid: %d", *opts.cfg.RunCtx.UID)
	}

	if opts.cfg.RunCtx.GID != nil {
		debug.Bulletf("gid: %d", *opts.cfg.RunCtx.GID)
	}

	debug.Bulletf("lock-privs: %t", opts.cfg.RunCtx.LockPrivs)
	debug.Bulletf("command: %v", opts.cfg.RunCtx.Command)
}

// runChildStage is reached only via the supervisor's own re-exec; it never
// returns on success because RunChildStage's final step is an execve.
func runChildStage() int {
	if err := sandbox.RunChildStage(sandbox.ConfigFD); err != nil {
		fprintError(os.Stderr, err)

		return 1
	}

	return 0
}

func fprintError(out io.Writer, err error) {
	var sbErr *sandboxerr.Error
	if errors.As(err, &sbErr) {
		_, _ = fmt.Fprintf(out, "%s: %s: %v\n", progName, sbErr.Kind, sbErr)

		return
	}

	_, _ = fmt.Fprintf(out, "%s: error: %v\n", progName, err)
}
