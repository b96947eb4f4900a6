// Command goalmatectl inspects activity reports and manages the schema
// from the command line.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
