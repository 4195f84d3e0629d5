// Package main is a minimal health checker for use in distroless
// containers. It calls /api/health-check/ on the given origin, prints the
// reported environment, version and status and exits 0; on any failure it
// prints the error to stderr and exits 1. Compile with CGO_ENABLED=0 for a
// fully static binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"healthbadge/internal/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	origin := fs.String("url", "http://localhost:8080", "Origin of the service to check")
	timeout := fs.Duration("timeout", 5*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, err := client.New(*origin).FetchHealth(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, status.Environment, status.Version, status.Status)
	return 0
}
