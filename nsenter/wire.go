//go:build linux

package nsenter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hako-run/sandbox-run/runctx"
)

// wireRunCtx mirrors runctx.RunCtx for the pipe handoff to a --fork child
// (see RunWithFork and SPEC_FULL.md §2).
type wireRunCtx struct {
	UID       *int     `json:"uid,omitempty"`
	GID       *int     `json:"gid,omitempty"`
	WorkDir   string   `json:"work_dir,omitempty"`
	Env       []string `json:"env,omitempty"`
	Command   []string `json:"command"`
	LockPrivs bool     `json:"lock_privs"`
}

func encodeRunCtx(w io.Writer, rc runctx.RunCtx) error {
	wire := wireRunCtx{
		UID:       rc.UID,
		GID:       rc.GID,
		WorkDir:   rc.WorkDir,
		Env:       rc.Env,
		Command:   rc.Command,
		LockPrivs: rc.LockPrivs,
	}

	if err := json.NewEncoder(w).Encode(wire); err != nil {
		return fmt.Errorf("encode run context: %w", err)
	}

	return nil
}

// decodeRunCtx reads a runctx.RunCtx as JSON from r, used by RunForked.
func decodeRunCtx(r io.Reader) (runctx.RunCtx, error) {
	var wire wireRunCtx

	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return runctx.RunCtx{}, fmt.Errorf("decode run context: %w", err)
	}

	return runctx.RunCtx{
		UID:       wire.UID,
		GID:       wire.GID,
		WorkDir:   wire.WorkDir,
		Env:       wire.Env,
		Command:   wire.Command,
		LockPrivs: wire.LockPrivs,
	}, nil
}
