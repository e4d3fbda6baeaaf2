package runctxflags

import (
	"testing"

	flag "github.com/spf13/pflag"
)

func Test_Resolve_NoIdentity_LockPrivsUserControlled(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Register(fs)

	rc, err := f.Resolve([]string{"/bin/sh"}, true)
	if err != nil {
		t.Fatalf("Resolve() = %v, want nil", err)
	}

	if rc.UID != nil || rc.GID != nil {
		t.Fatalf("expected nil uid/gid, got %+v", rc)
	}

	if rc.LockPrivs {
		t.Error("LockPrivs = true, want false when no identity given")
	}
}

func Test_Resolve_WithUser_ForceLockPrivsOn(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Register(fs)

	if err := fs.Parse([]string{"-u", "0"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}

	rc, err := f.Resolve([]string{"/bin/sh"}, true)
	if err != nil {
		t.Fatalf("Resolve() = %v, want nil", err)
	}

	if rc.UID == nil || *rc.UID != 0 {
		t.Fatalf("UID = %v, want pointer to 0", rc.UID)
	}

	if !rc.LockPrivs {
		t.Error("LockPrivs = false, want true when forceLockPrivs and uid given")
	}
}

func Test_Resolve_WithUser_NoForce_LockPrivsUserControlled(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Register(fs)

	if err := fs.Parse([]string{"-u", "0"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}

	rc, err := f.Resolve([]string{"/bin/sh"}, false)
	if err != nil {
		t.Fatalf("Resolve() = %v, want nil", err)
	}

	if rc.LockPrivs {
		t.Error("LockPrivs = true, want false when forceLockPrivs is false")
	}
}

func Test_Resolve_InvalidUser_ReturnsInvalidArgument(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Register(fs)

	if err := fs.Parse([]string{"-u", "no-such-user-xyz"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}

	if _, err := f.Resolve([]string{"/bin/sh"}, true); err == nil {
		t.Fatal("Resolve() with unresolvable user unexpectedly succeeded")
	}
}
