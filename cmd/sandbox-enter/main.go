// Command sandbox-enter joins the namespaces of a running sandbox-run
// sandbox and execs a command inside it.
package main

import "os"

func main() {
	os.Exit(Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
