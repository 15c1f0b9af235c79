// Command gira is a CLI for JIRA-style issue tracking services, speaking
// either the REST API or the legacy RPC protocol through one dispatch
// layer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gira-cli/gira/internal/telemetry"
)

func main() {
	ctx := context.Background()

	if err := telemetry.Init(ctx, "gira", version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
	}
	defer func() { _ = telemetry.Shutdown(ctx) }()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
