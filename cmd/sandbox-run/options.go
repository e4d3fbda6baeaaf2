package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/hako-run/sandbox-run/internal/runctxflags"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/sandbox"
)

const progName = "sandbox-run"

const usageHelp = `sandbox-run - run a command inside a freshly constructed namespace sandbox

Usage: sandbox-run [options] <target-dir> [--] [command] [args]

Flags:
  -h, --help               Print this message
  -m, --mount HOST:SANDBOX[:ro|rw]
                            Bind mount a file or directory into the sandbox (repeatable)
  -R, --read-only          Remount the sandbox root read-only after bind
  -u, --user USER|UID      Run as this user
  -g, --group GROUP|GID    Run as this group
  -L, --lock-privs         Prevent sandbox from gaining more privileges
  -c, --chdir DIR          Change to this directory inside the sandbox
  -e, --env NAME=VALUE     Set environment variable inside the sandbox (repeatable)
  -p, --pid-file FILE      Write supervisor-observed child pid to this file
  -d, --debug              Print sandbox construction details to stderr

If no command is given, the default is /bin/sh.`

// options holds the result of parsing the top-level CLI invocation.
type options struct {
	help    bool
	cfg     sandbox.SandboxConfig
	pidFile string
	debug   bool
}

func printUsage(out io.Writer) {
	_, _ = fmt.Fprintln(out, usageHelp)
}

// parseOptions parses args (excluding argv[0]) into options.
func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}
	fs.SetOutput(&strings.Builder{})

	flagHelp := fs.BoolP("help", "h", false, "Print this message")
	flagMounts := fs.StringArrayP("mount", "m", nil, "Bind mount HOST:SANDBOX[:ro|rw] (repeatable)")
	flagReadOnly := fs.BoolP("read-only", "R", false, "Remount sandbox root read-only")
	flagPidFile := fs.StringP("pid-file", "p", "", "Write supervisor-observed child pid to FILE")
	flagDebug := fs.BoolP("debug", "d", false, "Print sandbox construction details to stderr")

	rcFlags := runctxflags.Register(fs)

	if err := fs.Parse(args); err != nil {
		return options{}, sandboxerr.New(sandboxerr.InvalidArgument, "invalid arguments", err)
	}

	if *flagHelp {
		return options{help: true}, nil
	}

	positionals := fs.Args()
	if len(positionals) == 0 {
		return options{}, sandboxerr.New(sandboxerr.InvalidArgument, "must provide sandbox dir", nil)
	}

	sandboxDir := positionals[0]
	command := positionals[1:]

	if len(command) == 0 {
		command = []string{"/bin/sh"}
	}

	mounts := make([]sandbox.BindMount, 0, len(*flagMounts))

	for _, spec := range *flagMounts {
		m, err := sandbox.ParseBindMount(spec)
		if err != nil {
			return options{}, err
		}

		mounts = append(mounts, m)
	}

	rc, err := rcFlags.Resolve(command, true)
	if err != nil {
		return options{}, err
	}

	return options{
		cfg: sandbox.SandboxConfig{
			SandboxDir: sandboxDir,
			Mounts:     mounts,
			ReadOnly:   *flagReadOnly,
			RunCtx:     rc,
		},
		pidFile: *flagPidFile,
		debug:   *flagDebug,
	}, nil
}
