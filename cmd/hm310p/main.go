package main

import (
	"errors"
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd(os.Stdout)
	cmd, err := root.ExecuteC()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprint(os.Stderr, cmd.UsageString())
		os.Exit(2)
	}
	os.Exit(1)
}
