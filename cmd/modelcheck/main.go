// Command modelcheck validates records against schema documents.
//
//	modelcheck validate -schemas shop.yaml -schema Order order.json
//	modelcheck describe -schemas shop.yaml Order
//	modelcheck serve -schemas shop.yaml -addr :8080
//
// Flags default to the MODELCHECK_* environment variables; see Config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
