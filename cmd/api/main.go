// Package main provides the entry point for the BookBlog server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/pflag"

	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/di"
	"github.com/bookblog/bookblog-server/internal/logger"
)

func main() {
	var flags config.Flags
	flags.Register(pflag.CommandLine)
	pflag.Parse()

	injector := di.NewContainer(flags)

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container stops the HTTP server and the login limiter in reverse
	// dependency order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
