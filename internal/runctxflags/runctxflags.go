// Package runctxflags registers the run-ctx option group
// (-u/-g/-c/-e/-L) shared between sandbox-run and sandbox-enter, so the
// two binaries cannot drift (SPEC_FULL.md §6, "Supplemented from
// original_source/": the C source shared a RUN_CTX_OPTS option group
// between hako-run and hako-enter).
package runctxflags

import (
	flag "github.com/spf13/pflag"

	"github.com/hako-run/sandbox-run/internal/idresolve"
	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/runctx"
)

// Flags holds the registered run-ctx flag values before they are resolved
// into a runctx.RunCtx.
type Flags struct {
	user      *string
	group     *string
	chdir     *string
	env       *[]string
	lockPrivs *bool
}

// Register adds the shared run-ctx flags to fs.
func Register(fs *flag.FlagSet) *Flags {
	return &Flags{
		user:      fs.StringP("user", "u", "", "Run as this user"),
		group:     fs.StringP("group", "g", "", "Run as this group"),
		chdir:     fs.StringP("chdir", "c", "", "Change to this directory inside sandbox"),
		env:       fs.StringArrayP("env", "e", nil, "Set environment variable inside sandbox (NAME=VALUE, repeatable)"),
		lockPrivs: fs.BoolP("lock-privs", "L", false, "Prevent sandbox from gaining more privileges"),
	}
}

// Resolve builds a runctx.RunCtx from the registered flags and the given
// command argv. forceLockPrivs, when true, turns LockPrivs on regardless
// of the -L flag whenever a user or group was given: sandbox-run's rule
// (spec.md §9, "always on when any uid/gid is specified"). sandbox-enter
// passes false and leaves -L fully user-controlled.
func (f *Flags) Resolve(command []string, forceLockPrivs bool) (runctx.RunCtx, error) {
	rc := runctx.RunCtx{
		WorkDir:   *f.chdir,
		Env:       *f.env,
		Command:   command,
		LockPrivs: *f.lockPrivs,
	}

	if *f.user != "" {
		uid, err := idresolve.User(*f.user)
		if err != nil {
			return runctx.RunCtx{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid user", *f.user, err)
		}

		rc.UID = &uid
	}

	if *f.group != "" {
		gid, err := idresolve.Group(*f.group)
		if err != nil {
			return runctx.RunCtx{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid group", *f.group, err)
		}

		rc.GID = &gid
	}

	if forceLockPrivs && (rc.UID != nil || rc.GID != nil) {
		rc.LockPrivs = true
	}

	return rc, nil
}
