// Command sentidash is the command-line client for the E-Consultation
// sentiment dashboard.
//
// Usage:
//
//	sentidash comment "Delivery was late but support was great" --author u-17
//	sentidash analyze --yes
//	sentidash download --clear --out ./exports
//	sentidash stats
//	sentidash dashboard
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/econsult/sentidash/cmd/sentidash/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
