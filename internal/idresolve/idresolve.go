// Package idresolve resolves the USER|UID and GROUP|GID arguments accepted
// by -u/--user and -g/--group.
//
// Resolution via the system user database (/etc/passwd, /etc/group, NSS,
// ...) is named in spec §1 as an external collaborator: this package is a
// thin wrapper over os/user rather than a bespoke database reader.
package idresolve

import (
	"fmt"
	"os/user"
	"strconv"
)

// User resolves a -u/--user argument to a numeric uid.
//
// A purely numeric argument (including "0") is accepted as-is without a
// database lookup, matching spec §8's boundary case that "User specified
// as numeric 0 is accepted (superuser)".
func User(arg string) (int, error) {
	if uid, err := strconv.Atoi(arg); err == nil {
		if uid < 0 {
			return 0, fmt.Errorf("invalid user: %s", arg)
		}

		return uid, nil
	}

	u, err := user.Lookup(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid user: %s", arg)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, fmt.Errorf("invalid user: %s: uid %q is not numeric", arg, u.Uid)
	}

	return uid, nil
}

// Group resolves a -g/--group argument to a numeric gid.
func Group(arg string) (int, error) {
	if gid, err := strconv.Atoi(arg); err == nil {
		if gid < 0 {
			return 0, fmt.Errorf("invalid group: %s", arg)
		}

		return gid, nil
	}

	g, err := user.LookupGroup(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid group: %s", arg)
	}

	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, fmt.Errorf("invalid group: %s: gid %q is not numeric", arg, g.Gid)
	}

	return gid, nil
}
