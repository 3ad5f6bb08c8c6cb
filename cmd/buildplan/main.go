package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/cli"
)

// main is the entrypoint for the buildplan application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command line and maps the outcome to a process exit code.
func run(ctx context.Context, outW, errW io.Writer, args []string) int {
	err := cli.Execute(ctx, args, outW, errW)
	if err == nil {
		return builderr.ExitOK
	}

	fmt.Fprintln(errW, "Error:", err)
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return builderr.ExitFailure
}
