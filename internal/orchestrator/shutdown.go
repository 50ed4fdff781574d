package orchestrator

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// HandleSignals returns a context that ends the run loop after the
// first SIGINT or SIGTERM. The handler drives Shutdown itself so the
// grace timeout applies before the context is cancelled. A second
// signal exits immediately.
func (o *Orchestrator) HandleSignals() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("[Orchestrator] Received %v, stopping pipeline", sig)

		go func() {
			sig := <-sigCh
			log.Printf("[Orchestrator] Received %v again, exiting now", sig)
			os.Exit(1)
		}()

		o.Shutdown(ctx)
		cancel()
	}()

	return ctx
}
