// Command sandbox-run constructs a filesystem and namespace sandbox around
// a target directory and execs a command inside it.
package main

import (
	"os"
	"os/signal"
	"syscall"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGCHLD)

	os.Exit(Run(os.Stdin, os.Stdout, os.Stderr, os.Args, sigCh))
}
