// Command idhue colors identifiers by spelling.
//
// Usage:
//
//	idhue palette                 Show the generated identifier palette
//	idhue render FILE             Print FILE with colored identifiers
//	idhue view FILE               Open FILE in the terminal viewer
//	idhue rules                   List the configured language rules
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// Version information (set via ldflags during build).
var (
	version = ""
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func buildVersion() string {
	if version != "" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
