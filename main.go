package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	_ "time/tzdata"

	"github.com/penwyp/biff/commands"
	"golang.org/x/sys/unix"
)

func main() {
	// A closed stdout pipe surfaces as EPIPE from write instead of killing
	// the process.
	signal.Ignore(unix.SIGPIPE)

	if err := commands.Execute(); err != nil {
		if errors.Is(err, unix.EPIPE) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
