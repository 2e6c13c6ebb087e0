// Command cinemai is the command line front end for discovery, history,
// watch-later, trailers and the chat assistant.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := &rootOptions{}
	if err := execute(ctx, newRootCmdWith(opts), opts); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
