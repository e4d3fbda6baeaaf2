//go:build linux

package runctx

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/hako-run/sandbox-run/internal/sandboxerr"
)

func requireLinux(t *testing.T) {
	t.Helper()

	if runtime.GOOS != "linux" {
		t.Skipf("test requires Linux, running on %s", runtime.GOOS)
	}
}

func Test_DropIdentity_NoOp_When_Both_Nil(t *testing.T) {
	requireLinux(t)

	if err := DropIdentity(nil, nil); err != nil {
		t.Fatalf("DropIdentity(nil, nil) = %v, want nil", err)
	}
}

func Test_DropIdentity_SetsOwnIdentity_NoError(t *testing.T) {
	requireLinux(t)

	uid := os.Getuid()
	gid := os.Getgid()

	if err := DropIdentity(&uid, &gid); err != nil {
		t.Fatalf("DropIdentity to current ids = %v, want nil", err)
	}
}

func Test_DropIdentity_Unprivileged_ReportsPrivilegeChangeFailed(t *testing.T) {
	requireLinux(t)

	if os.Getuid() == 0 {
		t.Skip("test requires non-root")
	}

	otherUID := os.Getuid() + 1

	err := DropIdentity(&otherUID, nil)
	if err == nil {
		t.Fatal("DropIdentity to a foreign uid unexpectedly succeeded")
	}

	var sbErr *sandboxerr.Error
	if !errors.As(err, &sbErr) {
		t.Fatalf("error = %v, want *sandboxerr.Error", err)
	}

	if sbErr.Kind != sandboxerr.PrivilegeChangeFailed {
		t.Errorf("Kind = %v, want PrivilegeChangeFailed", sbErr.Kind)
	}
}

func Test_Execute_EmptyCommand_ReportsInvalidArgument(t *testing.T) {
	requireLinux(t)

	err := RunCtx{}.Execute()
	if err == nil {
		t.Fatal("Execute() with empty command unexpectedly succeeded")
	}

	var sbErr *sandboxerr.Error
	if !errors.As(err, &sbErr) {
		t.Fatalf("error = %v, want *sandboxerr.Error", err)
	}

	if sbErr.Kind != sandboxerr.InvalidArgument {
		t.Errorf("Kind = %v, want InvalidArgument", sbErr.Kind)
	}
}

func Test_Execute_MissingBinary_ReportsExecFailed(t *testing.T) {
	requireLinux(t)

	err := RunCtx{Command: []string{"/nonexistent/binary-xyz"}}.Execute()
	if err == nil {
		t.Fatal("Execute() with missing binary unexpectedly succeeded")
	}

	var sbErr *sandboxerr.Error
	if !errors.As(err, &sbErr) {
		t.Fatalf("error = %v, want *sandboxerr.Error", err)
	}

	if sbErr.Kind != sandboxerr.ExecFailed {
		t.Errorf("Kind = %v, want ExecFailed", sbErr.Kind)
	}

	if sbErr.Path != "/nonexistent/binary-xyz" {
		t.Errorf("Path = %q, want /nonexistent/binary-xyz", sbErr.Path)
	}
}
