//go:build linux

package sandbox

import (
	"os"
	"runtime"
	"syscall"
	"testing"

	"github.com/hako-run/sandbox-run/internal/exitcode"
)

func requireLinux(t *testing.T) {
	t.Helper()

	if runtime.GOOS != "linux" {
		t.Skipf("test requires Linux, running on %s", runtime.GOOS)
	}
}

// requireNamespaceSupport skips tests that actually clone new namespaces:
// that needs CAP_SYS_ADMIN or unprivileged user namespaces, neither of
// which a plain CI container reliably grants.
func requireNamespaceSupport(t *testing.T) {
	t.Helper()

	requireLinux(t)

	if os.Getuid() != 0 {
		t.Skip("test requires privilege to create new namespaces")
	}
}

func Test_Supervise_EmptySandboxDir_FailsBeforeReapingAnything(t *testing.T) {
	requireNamespaceSupport(t)

	code, err := Supervise(SandboxConfig{}, "", nil)
	if err == nil {
		t.Fatalf("Supervise with empty config unexpectedly succeeded, code=%d", code)
	}
}

func Test_WritePidFile_UnwritablePath_ReportsSupervisorIoFailed(t *testing.T) {
	requireLinux(t)

	err := writePidFile("/nonexistent-dir/pid", 1234)
	if err == nil {
		t.Fatal("writePidFile to an unwritable path unexpectedly succeeded")
	}
}

func Test_WritePidFile_WritesPid(t *testing.T) {
	requireLinux(t)

	path := t.TempDir() + "/pid"

	if err := writePidFile(path, 4242); err != nil {
		t.Fatalf("writePidFile() = %v, want nil", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}

	if string(got) != "4242" {
		t.Errorf("pid file contents = %q, want %q", got, "4242")
	}
}

func Test_ExitCode_SignalConvention(t *testing.T) {
	if got, want := exitcode.FromSignal(syscall.SIGTERM), 143; got != want {
		t.Fatalf("exitcode.FromSignal(SIGTERM) = %d, want %d", got, want)
	}
}
