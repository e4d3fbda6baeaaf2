//go:build linux

package nsenter

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

func Test_Join_InvalidPid_ReportsSandboxSetupFailed(t *testing.T) {
	requireLinux(t)

	err := Join(-1, nil)
	if err == nil {
		t.Fatal("Join(-1) unexpectedly succeeded")
	}

	var sbErr *sandboxerr.Error
	if !errors.As(err, &sbErr) {
		t.Fatalf("error = %v, want *sandboxerr.Error", err)
	}

	if sbErr.Kind != sandboxerr.SandboxSetupFailed {
		t.Errorf("Kind = %v, want SandboxSetupFailed", sbErr.Kind)
	}
}

func Test_Join_OwnPid_ReturnsNil(t *testing.T) {
	requireLinux(t)

	if os.Getuid() != 0 {
		t.Skip("test requires privilege to join namespaces")
	}

	var warnings []string

	err := Join(os.Getpid(), func(format string, args ...any) {
		warnings = append(warnings, format)
	})
	if err != nil {
		t.Fatalf("Join(own pid) = %v, want nil", err)
	}
}

func Test_TolerantNamespaces_OnlyUserAndNet(t *testing.T) {
	if len(tolerantNamespaces) != 2 || !tolerantNamespaces["user"] || !tolerantNamespaces["net"] {
		t.Fatalf("tolerantNamespaces = %v, want exactly {user, net}", tolerantNamespaces)
	}
}
