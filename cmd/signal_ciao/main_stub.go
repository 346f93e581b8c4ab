//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "signal_ciao only works on Windows")
	os.Exit(1)
}
