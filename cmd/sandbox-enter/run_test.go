package main

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Run_Help_PrintsUsageAndExitsZero(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Run(strings.NewReader(""), &stdout, &stderr, []string{progName, "-h"})

	if code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}

	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("stdout = %q, want usage text", stdout.String())
	}
}

func Test_Run_MissingPid_ExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Run(strings.NewReader(""), &stdout, &stderr, []string{progName})

	if code == 0 {
		t.Fatal("Run() with no args unexpectedly succeeded")
	}

	if !strings.Contains(stderr.String(), progName) {
		t.Errorf("stderr = %q, want it to name %s", stderr.String(), progName)
	}
}

func Test_Run_NonExistentPid_ExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer

	// pid 999999 almost certainly does not exist; Join must fail cleanly
	// rather than joining any namespace.
	code := Run(strings.NewReader(""), &stdout, &stderr, []string{progName, "999999"})

	if code == 0 {
		t.Fatal("Run() with a non-existent pid unexpectedly succeeded")
	}
}
