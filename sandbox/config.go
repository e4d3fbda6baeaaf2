//go:build linux

// Package sandbox implements the sandbox-construction state machine: the
// ordered unshare/mount/pivot_root/bind-mount/detach sequence run inside a
// freshly cloned child (spec §4.2), and the supervisor that holds the
// sandbox open from the host side (spec §4.3).
package sandbox

import (
	"strings"

	"github.com/hako-run/sandbox-run/internal/sandboxerr"
	"github.com/hako-run/sandbox-run/runctx"
)

// hakoDir is the literal name of the stash directory used to hold the old
// root during pivot_root (spec §3, §4.2, §6.4). It is not configurable.
const hakoDir = ".hako"

// BindMount is the triple (HostPath, SandboxPath, ReadOnly) from spec §3.
// HostPath is valid in the host's original mount namespace; SandboxPath is
// valid inside the sandbox root after pivot. Both must be non-empty.
type BindMount struct {
	HostPath    string
	SandboxPath string
	ReadOnly    bool
}

// SandboxConfig is the full description of a sandbox-run invocation (spec
// §3). It is created by CLI parsing and never mutated once the child has
// been cloned.
type SandboxConfig struct {
	// SandboxDir is the host path to the directory that becomes the new
	// root.
	SandboxDir string
	// Mounts is applied in order; order matters when one bind mount's
	// target is a subdirectory of another's.
	Mounts []BindMount
	// ReadOnly remounts the new root read-only after bind.
	ReadOnly bool
	// RunCtx describes the final in-sandbox process.
	RunCtx runctx.RunCtx
}

// ParseBindMount parses a colon-separated "HOST:SANDBOX[:MODE]" mount
// spec (spec §4.5): exactly two or three tokens, HOST and SANDBOX both
// non-empty. MODE is "ro" or "rw" (default "rw" if absent).
func ParseBindMount(spec string) (BindMount, error) {
	tokens := strings.Split(spec, ":")

	if len(tokens) < 2 || len(tokens) > 3 {
		return BindMount{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid mount", spec, nil)
	}

	host, sandboxPath := tokens[0], tokens[1]
	if host == "" || sandboxPath == "" {
		return BindMount{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid mount", spec, nil)
	}

	readonly := false

	if len(tokens) == 3 {
		switch tokens[2] {
		case "ro":
			readonly = true
		case "rw":
			readonly = false
		default:
			return BindMount{}, sandboxerr.NewPath(sandboxerr.InvalidArgument, "invalid mount", spec, nil)
		}
	}

	return BindMount{HostPath: host, SandboxPath: sandboxPath, ReadOnly: readonly}, nil
}
