// Package logger provides adapters for popular logger libraries to work with entstore's Logger interface.
//
// The adapters allow you to use your existing logger with entstore without writing boilerplate.
// Note that the standard library's slog.Logger already implements entstore.Logger directly.
//
// Example with zap:
//
//	import (
//	    "github.com/swarnim-deepsource/entstore"
//	    "github.com/swarnim-deepsource/entstore/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    world := entstore.NewWorld(
//	        entstore.WithLogger(logger.NewZap(zapLogger)),
//	    )
//	    _ = world
//	}
package logger
