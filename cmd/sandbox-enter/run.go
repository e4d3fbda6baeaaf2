package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/hako-run/sandbox-run/internal/debuglog"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/nsenter"
)

// Run is the entry point used by both main() and the test suite; see
// cmd/sandbox-run's Run for the same shape and rationale, minus the signal
// channel, which sandbox-enter does not take.
func Run(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	if len(args) > 1 && args[1] == nsenter.ForkSentinelArg {
		return runForkedStage(stderr)
	}

	if runtime.GOOS != "linux" {
		fprintError(stderr, errors.New("sandbox-enter requires Linux"))

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
		debug.Section("Namespace Join")
		debug.Bulletf("pid: %d", opts.pid)
		debug.Bulletf("fork: %t", opts.fork)
	}

	warn := func(format string, warnArgs ...any) {
		_, _ = fmt.Fprintf(stderr, "%s: warning: "+format+"\n", append([]any{progName}, warnArgs...)...)
	}

	if err := nsenter.Join(opts.pid, warn); err != nil {
		fprintError(stderr, err)

		return 1
	}

	debug.Bulletf("joined namespaces, command: %v", opts.rc.Command)

	if opts.fork {
		code, err := nsenter.RunWithFork(opts.rc)
		if err != nil {
			fprintError(stderr, err)

			return 1
		}

		return code
	}

	// Not forking: the joined namespaces are adopted directly by this
	// process and Execute replaces it, as spec §4.4 step 5 requires.
	if err := opts.rc.Execute(); err != nil {
		fprintError(stderr, err)

		return 1
	}

	return 0
}

func runForkedStage(stderr io.Writer) int {
	if err := nsenter.RunForked(nsenter.ConfigFD); err != nil {
		fprintError(stderr, err)

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
