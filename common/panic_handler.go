package common

import (
	"fmt"
	"os"
	"runtime/debug"
)

// PanicHandler is deferred at the top of main, it prints the panic and stack and exits non-zero.
func PanicHandler() {
	r := recover()
	if r == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Panic occurred in connector-agent %v\n", r)
	debug.PrintStack()
	os.Exit(1)
}
