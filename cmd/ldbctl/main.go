// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// ldbctl manages local single-container database instances.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/siemens/ldbengine/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cli.Execute(ctx)
}
