//go:build linux

package sandbox

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hako-run/sandbox-run/runctx"
)

// wireConfig mirrors SandboxConfig for the pipe handoff described in
// SPEC_FULL.md §2 ("Process re-exec model"). Go cannot share a SandboxConfig
// value across the exec boundary the way the C source shares struct
// sandbox_cfg_s across clone's copy-on-write address space, so the
// supervisor serializes it as JSON and the child decodes it from an
// inherited pipe fd.
type wireConfig struct {
	SandboxDir string      `json:"sandbox_dir"`
	Mounts     []BindMount `json:"mounts"`
	ReadOnly   bool        `json:"readonly"`
	RunCtx     wireRunCtx  `json:"run_ctx"`
}

type wireRunCtx struct {
	UID       *int     `json:"uid,omitempty"`
	GID       *int     `json:"gid,omitempty"`
	WorkDir   string   `json:"work_dir,omitempty"`
	Env       []string `json:"env,omitempty"`
	Command   []string `json:"command"`
	LockPrivs bool     `json:"lock_privs"`
}

func toWire(cfg SandboxConfig) wireConfig {
	return wireConfig{
		SandboxDir: cfg.SandboxDir,
		Mounts:     cfg.Mounts,
		ReadOnly:   cfg.ReadOnly,
		RunCtx: wireRunCtx{
			UID:       cfg.RunCtx.UID,
			GID:       cfg.RunCtx.GID,
			WorkDir:   cfg.RunCtx.WorkDir,
			Env:       cfg.RunCtx.Env,
			Command:   cfg.RunCtx.Command,
			LockPrivs: cfg.RunCtx.LockPrivs,
		},
	}
}

func fromWire(w wireConfig) SandboxConfig {
	return SandboxConfig{
		SandboxDir: w.SandboxDir,
		Mounts:     w.Mounts,
		ReadOnly:   w.ReadOnly,
		RunCtx: runctx.RunCtx{
			UID:       w.RunCtx.UID,
			GID:       w.RunCtx.GID,
			WorkDir:   w.RunCtx.WorkDir,
			Env:       w.RunCtx.Env,
			Command:   w.RunCtx.Command,
			LockPrivs: w.RunCtx.LockPrivs,
		},
	}
}

// encodeConfig writes cfg as JSON to w.
func encodeConfig(w io.Writer, cfg SandboxConfig) error {
	if err := json.NewEncoder(w).Encode(toWire(cfg)); err != nil {
		return fmt.Errorf("encode sandbox config: %w", err)
	}

	return nil
}

// decodeConfig reads a SandboxConfig as JSON from r.
func decodeConfig(r io.Reader) (SandboxConfig, error) {
	var w wireConfig

	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return SandboxConfig{}, fmt.Errorf("decode sandbox config: %w", err)
	}

	return fromWire(w), nil
}
