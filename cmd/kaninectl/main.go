// Package main provides kaninectl, the administration tool for a Kanine data directory.
//
// Usage:
//
//	kaninectl user create --email ada@example.com --password hunter22 --name Ada
//	kaninectl search reindex
//	kaninectl export notes --email ada@example.com --format parquet --out notes.parquet
//	kaninectl seed --email ada@example.com
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
