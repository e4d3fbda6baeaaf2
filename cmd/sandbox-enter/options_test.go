package main

import "testing"

func Test_ParseOptions_Help(t *testing.T) {
	opts, err := parseOptions([]string{"-h"})
	if err != nil {
		t.Fatalf("parseOptions() = %v, want nil", err)
	}

	if !opts.help {
		t.Error("help = false, want true")
	}
}

func Test_ParseOptions_MissingPid_IsInvalidArgument(t *testing.T) {
	_, err := parseOptions(nil)
	if err == nil {
		t.Fatal("parseOptions(nil) unexpectedly succeeded")
	}
}

func Test_ParseOptions_NonNumericPid_IsInvalidArgument(t *testing.T) {
	_, err := parseOptions([]string{"not-a-pid"})
	if err == nil {
		t.Fatal("parseOptions() with non-numeric pid unexpectedly succeeded")
	}
}

func Test_ParseOptions_NegativePid_IsInvalidArgument(t *testing.T) {
	_, err := parseOptions([]string{"-1"})
	if err == nil {
		t.Fatal("parseOptions() with negative pid unexpectedly succeeded")
	}
}

func Test_ParseOptions_NoCommand_DefaultsToShell(t *testing.T) {
	opts, err := parseOptions([]string{"1234"})
	if err != nil {
		t.Fatalf("parseOptions() = %v, want nil", err)
	}

	if len(opts.rc.Command) != 1 || opts.rc.Command[0] != "/bin/sh" {
		t.Fatalf("Command = %v, want [/bin/sh]", opts.rc.Command)
	}
}

func Test_ParseOptions_ExplicitCommandAndFork(t *testing.T) {
	opts, err := parseOptions([]string{"-f", "1234", "/bin/echo", "hi"})
	if err != nil {
		t.Fatalf("parseOptions() = %v, want nil", err)
	}

	if !opts.fork {
		t.Error("fork = false, want true")
	}

	want := []string{"/bin/echo", "hi"}
	got := opts.rc.Command

	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Command = %v, want %v", got, want)
	}
}

func Test_ParseOptions_Pid(t *testing.T) {
	opts, err := parseOptions([]string{"4242"})
	if err != nil {
		t.Fatalf("parseOptions() = %v, want nil", err)
	}

	if opts.pid != 4242 {
		t.Errorf("pid = %d, want 4242", opts.pid)
	}
}
