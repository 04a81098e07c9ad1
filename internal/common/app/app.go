package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
)

// CreateContextWithShutdown returns a context that will report done when a SIGINT or SIGTERM is received
func CreateContextWithShutdown() *runctx.Context {
	return WithShutdown(runctx.Background())
}

// WithShutdown returns a child of parent that is cancelled on SIGINT or SIGTERM.
func WithShutdown(parent *runctx.Context) *runctx.Context {
	ctx, cancel := runctx.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			ctx.Log.Infof("Received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
