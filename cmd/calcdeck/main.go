package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	container, err := app.BuildContainer(ctx, app.Options{Verbose: isVerbose()})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	err = cli.NewRootCmd(ctx, container).ExecuteContext(ctx)
	if cerr := container.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "warning: close:", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	v := os.Getenv("CALCDECK_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}
