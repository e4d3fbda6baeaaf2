package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/hako-run/sandbox-run/internal/runctxflags"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/runctx"
)

const progName = "sandbox-enter"

const usageHelp = `sandbox-enter - join the namespaces of a running sandbox-run sandbox

Usage: sandbox-enter [options] <pid> [--] [command] [args]

Flags:
  -h, --help               Print this message
  -f, --fork               Fork a new process inside the sandbox
  -u, --user USER|UID      Run as this user
  -g, --group GROUP|GID    Run as this group
  -L, --lock-privs         Prevent sandbox from gaining more privileges
  -c, --chdir DIR          Change to this directory inside the sandbox
  -e, --env NAME=VALUE     Set environment variable inside the sandbox (repeatable)
  -d, --debug              Print join details to stderr

If no command is given, the default is /bin/sh.`

type options struct {
	help  bool
	pid   int
	fork  bool
	rc    runctx.RunCtx
	debug bool
}

func printUsage(out io.Writer) {
	_, _ = fmt.Fprintln(out, usageHelp)
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}
	fs.SetOutput(&strings.Builder{})

	flagHelp := fs.BoolP("help", "h", false, "Print this message")
	flagFork := fs.BoolP("fork", "f", false, "Fork a new process inside the sandbox")
	flagDebug := fs.BoolP("debug", "d", false, "Print join details to stderr")

	rcFlags := runctxflags.Register(fs)

	if err := fs.Parse(args); err != nil {
		return options{}, sandboxerr.New(sandboxerr.InvalidArgument, "invalid arguments", err)
	}

	if *flagHelp {
		return options{help: true}, nil
	}

	positionals := fs.Args()
	if len(positionals) == 0 {
		return options{}, sandboxerr.New(sandboxerr.InvalidArgument, "must provide sandbox pid", nil)
	}

	pid, err := strconv.Atoi(positionals[0])
	if err != nil || pid <= 0 {
		return options{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid pid", positionals[0], nil)
	}

	command := positionals[1:]
	if len(command) == 0 {
		command = []string{"/bin/sh"}
	}

	rc, err := rcFlags.Resolve(command, false)
	if err != nil {
		return options{}, err
	}

	return options{
		pid:   pid,
		fork:  *flagFork,
		rc:    rc,
		debug: *flagDebug,
	}, nil
}
