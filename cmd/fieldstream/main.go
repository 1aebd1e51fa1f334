// Command fieldstream streams one string field out of a model's JSON output.
//
// Usage:
//
//	fieldstream extract [FILE]      stream the field of a saved or piped output
//	fieldstream serve               run the HTTP service
//	fieldstream chat PROMPT         ask a model and speak the reply as it arrives
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
